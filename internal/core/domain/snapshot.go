package domain

// CompletionSet is the deduplicated set of completed dates of one habit.
type CompletionSet map[CalendarKey]struct{}

func NewCompletionSet(keys ...CalendarKey) CompletionSet {
	set := make(CompletionSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (s CompletionSet) Has(k CalendarKey) bool {
	_, ok := s[k]
	return ok
}

func (s CompletionSet) Len() int { return len(s) }

// Earliest returns the oldest completed date, or "" for an empty set.
func (s CompletionSet) Earliest() CalendarKey {
	var earliest CalendarKey
	for k := range s {
		if earliest.IsZero() || k.Before(earliest) {
			earliest = k
		}
	}
	return earliest
}

// Keys returns the dates in chronological order.
func (s CompletionSet) Keys() []CalendarKey {
	keys := make([]CalendarKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// HabitSnapshot is the read-only view of a habit the metrics engine works on.
// It is built fresh from the store on every read and never mutated.
type HabitSnapshot struct {
	Schedule                Schedule
	Completed               CompletionSet
	ChallengeDurationDays   int
	ChallengeCompletedCount int
	BestStreakRecorded      int

	// Since is the first day of the habit's history. When empty the earliest
	// completion is used instead.
	Since CalendarKey
}

func (s HabitSnapshot) IsScheduled(date CalendarKey) bool {
	return s.Schedule.IsScheduled(date)
}

func (s HabitSnapshot) IsCompleted(date CalendarKey) bool {
	return s.Completed.Has(date)
}

// HistoryStart returns the first date of the habit's lifetime window.
func (s HabitSnapshot) HistoryStart() CalendarKey {
	earliest := s.Completed.Earliest()
	if s.Since.IsZero() {
		return earliest
	}
	if !earliest.IsZero() && earliest.Before(s.Since) {
		return earliest
	}
	return s.Since
}
