// Package recurrence expands a recurring booking pattern into candidate
// occurrence instants. Expansion is pure; whether a candidate becomes a
// booking is decided by the caller, one occurrence at a time.
package recurrence

import (
	"errors"
	"time"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	FrequencyUnspecified Frequency = iota
	// FrequencyWeekly advances in 7-day steps from the base instant.
	FrequencyWeekly
	// FrequencyMonthly advances one calendar month at a time.
	FrequencyMonthly
)

// Pattern describes a recurrence configuration.
type Pattern struct {
	Frequency Frequency
	// Weekdays optionally restricts weekly occurrences to the listed
	// weekdays; when empty, occurrences stay on the base weekday.
	Weekdays []time.Weekday
	// End bounds the series (inclusive). Required: unbounded expansion is
	// rejected.
	End time.Time
}

var (
	// ErrInvalidFrequency indicates the pattern frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrUnboundedWindow indicates the pattern has no end bound.
	ErrUnboundedWindow = errors.New("recurrence: pattern requires an end date")
)

// DefaultMaxOccurrences caps runaway series (two years of weekly dates).
const DefaultMaxOccurrences = 104

// Expand produces the candidate occurrence instants strictly after base and
// at or before p.End, in ascending order. The base instant itself is not an
// occurrence; it belongs to the parent booking. At most limit candidates are
// returned; pass 0 for DefaultMaxOccurrences.
func Expand(base time.Time, p Pattern, limit int) ([]time.Time, error) {
	if p.End.IsZero() {
		return nil, ErrUnboundedWindow
	}
	if limit <= 0 {
		limit = DefaultMaxOccurrences
	}

	switch p.Frequency {
	case FrequencyWeekly:
		return expandWeekly(base, p, limit), nil
	case FrequencyMonthly:
		return expandMonthly(base, p.End, limit), nil
	default:
		return nil, ErrInvalidFrequency
	}
}

func expandWeekly(base time.Time, p Pattern, limit int) []time.Time {
	weekdays := p.Weekdays
	if len(weekdays) == 0 {
		weekdays = []time.Weekday{base.Weekday()}
	}
	selected := make(map[time.Weekday]bool, len(weekdays))
	for _, day := range weekdays {
		selected[day] = true
	}

	var out []time.Time
	// Walk day by day so multi-weekday patterns come out in order.
	for t := base.AddDate(0, 0, 1); !t.After(p.End) && len(out) < limit; t = t.AddDate(0, 0, 1) {
		if selected[t.Weekday()] {
			out = append(out, t)
		}
	}
	return out
}

func expandMonthly(base, end time.Time, limit int) []time.Time {
	var out []time.Time
	// AddDate normalizes short months (Jan 31 + 1 month = Mar 3), which
	// matches the "advance one calendar month" contract.
	for t := base.AddDate(0, 1, 0); !t.After(end) && len(out) < limit; t = t.AddDate(0, 1, 0) {
		out = append(out, t)
	}
	return out
}
