package model

import "math"

// Reward computes the payable amount for one attendance classification
// against this event's snapshotted economic parameters:
//
//	base   = cost * quantity / capacity
//	bonus  = base * (military% + overnight%) for the flags that are set
//	reward = base + bonus, scaled by penalty% for PARTIAL attendance
//
// The result is rounded to one decimal (half away from zero) and then
// truncated to an integer. ABSENT always pays zero.
func (e *Event) Reward(t AttendanceType) int {
	if t != AttendanceFull && t != AttendancePartial {
		return 0
	}
	if e.Capacity <= 0 {
		// Guarded at template creation; never divide here.
		return 0
	}

	reward := float64(e.Cost) * float64(e.Quantity) / float64(e.Capacity)
	var bonus float64
	if e.IsMilitary {
		bonus += float64(e.Military) * reward / 100
	}
	if e.IsOvernight {
		bonus += float64(e.Overnight) * reward / 100
	}
	reward += bonus
	if t == AttendancePartial {
		reward = reward * float64(e.Penalty) / 100
	}
	return int(math.Round(reward*10) / 10)
}

// FullReward is the amount paid to an on-time participant.
func (e *Event) FullReward() int {
	return e.Reward(AttendanceFull)
}

// PartialReward is the amount paid to a late participant.
func (e *Event) PartialReward() int {
	return e.Reward(AttendancePartial)
}
