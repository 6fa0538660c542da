// Package delivery decides whether a notification is delivered now,
// deferred, or suppressed for a given preference and channel.
package delivery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"notification-center/internal/models"
)

// Verdict is the outcome of resolving a preference against a channel and time.
type Verdict int

const (
	// Deliver means the notification goes out now.
	Deliver Verdict = iota
	// Defer means quiet hours are in effect; NextEligible holds the end of
	// the window.
	Defer
	// Suppress means the preference blocks this channel indefinitely.
	Suppress
	// Batch means the category uses a daily/weekly digest. Digest assembly
	// is not implemented anywhere upstream; batched notifications are held
	// as pending and never dispatched.
	Batch
)

func (v Verdict) String() string {
	switch v {
	case Deliver:
		return "deliver"
	case Defer:
		return "defer"
	case Suppress:
		return "suppress"
	case Batch:
		return "batch"
	}
	return "unknown"
}

// Decision is the resolver output. NextEligible is meaningful only when the
// verdict is Defer.
type Decision struct {
	Verdict      Verdict
	NextEligible time.Time
}

// Resolve applies the preference rules in order: inactive or disabled channel
// suppresses, quiet hours defer until the window's end (wrapping past
// midnight when end < start), then frequency decides between deliver, batch,
// and suppress.
func Resolve(pref models.Preference, channel string, at time.Time) Decision {
	if !pref.IsActive {
		return Decision{Verdict: Suppress}
	}
	if !pref.HasChannel(channel) {
		return Decision{Verdict: Suppress}
	}

	if pref.QuietStart != "" && pref.QuietEnd != "" {
		if next, quiet := quietUntil(pref.QuietStart, pref.QuietEnd, at); quiet {
			return Decision{Verdict: Defer, NextEligible: next}
		}
	}

	switch pref.Frequency {
	case models.FrequencyNever:
		return Decision{Verdict: Suppress}
	case models.FrequencyDaily, models.FrequencyWeekly:
		return Decision{Verdict: Batch}
	default:
		// immediate, and any unrecognized descriptor
		return Decision{Verdict: Deliver}
	}
}

// quietUntil reports whether at falls inside the [start, end) quiet window
// and, if so, the next moment delivery becomes eligible. Unparseable bounds
// disable the window.
func quietUntil(start, end string, at time.Time) (time.Time, bool) {
	startMin, err := parseClock(start)
	if err != nil {
		return time.Time{}, false
	}
	endMin, err := parseClock(end)
	if err != nil {
		return time.Time{}, false
	}
	if startMin == endMin {
		return time.Time{}, false
	}

	nowMin := at.Hour()*60 + at.Minute()

	var inWindow, endsTomorrow bool
	if startMin < endMin {
		inWindow = nowMin >= startMin && nowMin < endMin
	} else {
		// Window wraps past midnight, e.g. 22:00-08:00.
		inWindow = nowMin >= startMin || nowMin < endMin
		endsTomorrow = nowMin >= startMin
	}
	if !inWindow {
		return time.Time{}, false
	}

	eligible := time.Date(at.Year(), at.Month(), at.Day(), endMin/60, endMin%60, 0, 0, at.Location())
	if endsTomorrow {
		eligible = eligible.AddDate(0, 0, 1)
	}
	return eligible, true
}

// parseClock converts an "HH:MM" wall-clock string to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}
