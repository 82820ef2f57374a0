package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidCalendarKey = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrInvalidWeekday     = errors.New("invalid weekday (must be one of mon,tue,wed,thu,fri,sat,sun)")
)

const CalendarKeyLayout = "2006-01-02"

// CalendarKey is a timezone-free date. Set membership and ordering of
// completions always go through the key, never through a timestamp.
type CalendarKey string

// KeyOf returns the key for the calendar date of t in t's own location.
func KeyOf(t time.Time) CalendarKey {
	return CalendarKey(t.Format(CalendarKeyLayout))
}

func ParseCalendarKey(s string) (CalendarKey, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(CalendarKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCalendarKey, s)
	}
	return KeyOf(t), nil
}

// Time returns midnight UTC of the key's date, or the zero time for a
// malformed key.
func (k CalendarKey) Time() time.Time {
	t, err := time.Parse(CalendarKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k CalendarKey) String() string { return string(k) }

func (k CalendarKey) IsZero() bool { return k == "" }

func (k CalendarKey) AddDays(n int) CalendarKey {
	return KeyOf(k.Time().AddDate(0, 0, n))
}

// Scan accepts DATE columns as delivered by the Postgres and SQLite drivers.
func (k *CalendarKey) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*k = ""
		return nil
	case time.Time:
		*k = KeyOf(v)
		return nil
	case string:
		return k.scanText(v)
	case []byte:
		return k.scanText(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidCalendarKey, src)
	}
}

func (k *CalendarKey) scanText(s string) error {
	if len(s) > len(CalendarKeyLayout) {
		s = s[:len(CalendarKeyLayout)]
	}
	parsed, err := ParseCalendarKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k CalendarKey) Value() (driver.Value, error) {
	if k.IsZero() {
		return nil, nil
	}
	return string(k), nil
}

func (k CalendarKey) Before(other CalendarKey) bool { return k < other }

func (k CalendarKey) After(other CalendarKey) bool { return k > other }

func (k CalendarKey) Weekday() Weekday {
	return WeekdayFromTime(k.Time().Weekday())
}

// DaysBetween counts the dates in [start, end]. Reversed bounds yield 0.
func DaysBetween(start, end CalendarKey) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Time().Sub(start.Time()).Hours()/24) + 1
}

// EachDay calls fn for every date in [start, end]. Malformed or reversed
// bounds visit nothing.
func EachDay(start, end CalendarKey, fn func(CalendarKey)) {
	from, to := start.Time(), end.Time()
	if from.IsZero() || to.IsZero() {
		return
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(KeyOf(d))
	}
}

// WeekOf returns the Monday..Sunday week containing k.
func WeekOf(k CalendarKey) (CalendarKey, CalendarKey) {
	offset := int(k.Weekday())
	start := k.AddDays(-offset)
	return start, start.AddDays(6)
}

func MonthOf(k CalendarKey) (CalendarKey, CalendarKey) {
	t := k.Time()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return KeyOf(first), KeyOf(first.AddDate(0, 1, -1))
}

func YearOf(k CalendarKey) (CalendarKey, CalendarKey) {
	y := k.Time().Year()
	return KeyOf(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)),
		KeyOf(time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC))
}

// Weekday is a Monday-first weekday tag.
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTags = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// nativeWeekdays maps time.Weekday (0 = Sunday) onto tags. Every caller
// converting a native weekday must go through WeekdayFromTime.
var nativeWeekdays = [7]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdayFromTime(d time.Weekday) Weekday {
	return nativeWeekdays[int(d)%7]
}

func ParseWeekday(s string) (Weekday, error) {
	tag := strings.ToLower(strings.TrimSpace(s))
	for i, t := range weekdayTags {
		if t == tag {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

func (w Weekday) IsValid() bool { return w <= Sunday }

func (w Weekday) String() string {
	if !w.IsValid() {
		return fmt.Sprintf("weekday(%d)", uint8(w))
	}
	return weekdayTags[w]
}

func (w Weekday) MarshalText() ([]byte, error) {
	if !w.IsValid() {
		return nil, ErrInvalidWeekday
	}
	return []byte(weekdayTags[w]), nil
}

func (w *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// WeekdaySet is a set of weekday tags stored as a bitmask.
type WeekdaySet uint8

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func ParseWeekdaySet(tags []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, tag := range tags {
		d, err := ParseWeekday(tag)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	return s, nil
}

func (s WeekdaySet) With(d Weekday) WeekdaySet {
	if !d.IsValid() {
		return s
	}
	return s | 1<<d
}

func (s WeekdaySet) Has(d Weekday) bool {
	return d.IsValid() && s&(1<<d) != 0
}

func (s WeekdaySet) Len() int { return bits.OnesCount8(uint8(s & 0x7f)) }

func (s WeekdaySet) IsEmpty() bool { return s.Len() == 0 }

// Days returns the members in Monday-first order.
func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, s.Len())
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) Tags() []string {
	tags := make([]string, 0, s.Len())
	for _, d := range s.Days() {
		tags = append(tags, d.String())
	}
	return tags
}

func (s WeekdaySet) String() string { return strings.Join(s.Tags(), ",") }

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Tags())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeekday, err)
	}
	parsed, err := ParseWeekdaySet(tags)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SortKeys orders keys chronologically in place.
func SortKeys(keys []CalendarKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
