package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidScheduleKind      = errors.New("invalid schedule kind (must be everyday, weekdays, or challenge)")
	ErrEmptyWeekdays            = errors.New("weekday schedule needs at least one day")
	ErrInvalidChallengeDuration = errors.New("challenge duration must be a positive number of days")
)

type ScheduleKind string

const (
	ScheduleEveryday  ScheduleKind = "everyday"
	ScheduleWeekdays  ScheduleKind = "weekdays"
	ScheduleChallenge ScheduleKind = "challenge"
)

func (k ScheduleKind) IsValid() bool {
	switch k {
	case ScheduleEveryday, ScheduleWeekdays, ScheduleChallenge:
		return true
	default:
		return false
	}
}

func ParseScheduleKind(input string) (ScheduleKind, error) {
	k := ScheduleKind(strings.ToLower(strings.TrimSpace(input)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidScheduleKind, input)
	}
	return k, nil
}

// Schedule is a habit's recurrence rule. Days is only meaningful for
// ScheduleWeekdays and DurationDays only for ScheduleChallenge.
type Schedule struct {
	Kind         ScheduleKind `json:"kind"`
	Days         WeekdaySet   `json:"days,omitempty"`
	DurationDays int          `json:"duration_days,omitempty"`
}

func Everyday() Schedule {
	return Schedule{Kind: ScheduleEveryday}
}

func SpecificWeekdays(days ...Weekday) Schedule {
	return Schedule{Kind: ScheduleWeekdays, Days: NewWeekdaySet(days...)}
}

func Challenge(durationDays int) Schedule {
	return Schedule{Kind: ScheduleChallenge, DurationDays: durationDays}
}

func (s Schedule) Validate() error {
	switch s.Kind {
	case ScheduleEveryday:
		return nil
	case ScheduleWeekdays:
		if s.Days.IsEmpty() {
			return ErrEmptyWeekdays
		}
		return nil
	case ScheduleChallenge:
		if s.DurationDays <= 0 {
			return ErrInvalidChallengeDuration
		}
		return nil
	default:
		return ErrInvalidScheduleKind
	}
}

// Normalize drops the fields that do not belong to the schedule's kind.
func (s Schedule) Normalize() Schedule {
	switch s.Kind {
	case ScheduleWeekdays:
		return Schedule{Kind: s.Kind, Days: s.Days}
	case ScheduleChallenge:
		return Schedule{Kind: s.Kind, DurationDays: s.DurationDays}
	default:
		return Schedule{Kind: s.Kind}
	}
}

// IsScheduled reports whether the habit obligates an action on date.
// A weekday schedule with no days is never scheduled; an unknown kind
// obligates nothing.
func (s Schedule) IsScheduled(date CalendarKey) bool {
	switch s.Kind {
	case ScheduleEveryday, ScheduleChallenge:
		return true
	case ScheduleWeekdays:
		return s.Days.Has(date.Weekday())
	default:
		return false
	}
}

func (s Schedule) IsChallenge() bool { return s.Kind == ScheduleChallenge }

func (s Schedule) String() string {
	switch s.Kind {
	case ScheduleWeekdays:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Days)
	case ScheduleChallenge:
		return fmt.Sprintf("%s(%dd)", s.Kind, s.DurationDays)
	default:
		return string(s.Kind)
	}
}
