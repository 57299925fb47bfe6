package model

import (
	"errors"
	"strings"
	"testing"
)

func validTemplate() *EventTemplate {
	return &EventTemplate{
		Type:      TypeChain,
		Unit:      UnitTime,
		Capacity:  60,
		Cost:      100,
		Penalty:   50,
		Military:  20,
		Overnight: 25,
		Title:     "evening chain",
	}
}

func TestValidateTemplate_Valid(t *testing.T) {
	if err := ValidateTemplate(validTemplate()); err != nil {
		t.Errorf("ValidateTemplate() = %v, want nil", err)
	}
}

func TestValidateTemplate_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name      string
		mutate    func(*EventTemplate)
		wantField string
	}{
		{"empty title", func(tpl *EventTemplate) { tpl.Title = "  " }, "title"},
		{"long title", func(tpl *EventTemplate) { tpl.Title = strings.Repeat("x", 65) }, "title"},
		{"unknown type", func(tpl *EventTemplate) { tpl.Type = "RAID" }, "type"},
		{"unknown unit", func(tpl *EventTemplate) { tpl.Unit = "HOUR" }, "unit"},
		{"zero capacity", func(tpl *EventTemplate) { tpl.Capacity = 0 }, "capacity"},
		{"negative capacity", func(tpl *EventTemplate) { tpl.Capacity = -5 }, "capacity"},
		{"negative cost", func(tpl *EventTemplate) { tpl.Cost = -1 }, "cost"},
		{"negative quantity", func(tpl *EventTemplate) { tpl.Quantity = -1 }, "quantity"},
		{"penalty out of range", func(tpl *EventTemplate) { tpl.Penalty = 101 }, "penalty"},
		{"negative military", func(tpl *EventTemplate) { tpl.Military = -1 }, "military"},
		{"overnight out of range", func(tpl *EventTemplate) { tpl.Overnight = 200 }, "overnight"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate()
			tc.mutate(tpl)

			err := ValidateTemplate(tpl)
			if err == nil {
				t.Fatal("ValidateTemplate() = nil, want error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error is %T, want *ValidationError", err)
			}
			found := false
			for _, fe := range ve.Errors {
				if fe.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error on field %q in %v", tc.wantField, ve)
			}
		})
	}
}

func TestValidateEvent_FinishedNeedsQuantity(t *testing.T) {
	e := &Event{
		Type: TypeOnce, Unit: UnitThing, Capacity: 5, Cost: 50,
		Title: "boss run", Status: StatusFinished, Quantity: 0,
	}
	if err := ValidateEvent(e); err == nil {
		t.Error("ValidateEvent() on finished event with quantity 0 = nil, want error")
	}

	e.Quantity = 5
	if err := ValidateEvent(e); err != nil {
		t.Errorf("ValidateEvent() = %v, want nil", err)
	}
}

func TestValidateEvent_DeferredQuantityWhileStarted(t *testing.T) {
	e := &Event{
		Type: TypeOnce, Unit: UnitThing, Capacity: 5, Cost: 50,
		Title: "boss run", Status: StatusStarted, Quantity: 0,
	}
	if err := ValidateEvent(e); err != nil {
		t.Errorf("ValidateEvent() = %v, want nil (quantity 0 is valid while started)", err)
	}
}
