package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindNow        Kind = "now"
	KindTomorrow   Kind = "tomorrow"
	KindCustomAt   Kind = "custom_at"
	KindNoReminder Kind = "no_reminder"
	KindInvalid    Kind = "invalid"
)

// Directive is the structured outcome of a scheduling reply. At is only
// meaningful for KindNow, KindTomorrow and KindCustomAt.
type Directive struct {
	Kind Kind
	At   time.Time
}

const morningHour = 9

var relativeRe = regexp.MustCompile(`in\s+(\d+)\s+(minute|hour|day)s?`)

// Ordered so that classification stays deterministic when a reply names
// several weekdays.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// Classify maps a free-text scheduling reply to a directive. Matching is an
// ordered substring-rule list; the order resolves overlaps ("now or
// tomorrow" is KindNow). Unrecognized text falls back to the tomorrow
// directive; callers that care must gate on IsRecognized first.
func Classify(text string, now time.Time) Directive {
	d := match(text, now)
	if d.Kind == KindInvalid {
		return Directive{Kind: KindTomorrow, At: tomorrowMorning(now)}
	}

	return d
}

// IsRecognized reports whether the text matches any classification rule.
func IsRecognized(text string) bool {
	return match(text, time.Now()).Kind != KindInvalid
}

func match(text string, now time.Time) Directive {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(lower, "now", "immediately", "send it"):
		return Directive{Kind: KindNow, At: now}

	case containsAny(lower, "tomorrow", "morning"):
		return Directive{Kind: KindTomorrow, At: tomorrowMorning(now)}

	case containsAny(lower, "no", "never"):
		return Directive{Kind: KindNoReminder}
	}

	if m := relativeRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])

		var unit time.Duration
		switch m[2] {
		case "minute":
			unit = time.Minute
		case "hour":
			unit = time.Hour
		case "day":
			unit = 24 * time.Hour
		}

		return Directive{Kind: KindCustomAt, At: now.Add(time.Duration(n) * unit)}
	}

	for _, w := range weekdays {
		if strings.Contains(lower, w.name) {
			return Directive{Kind: KindCustomAt, At: nextWeekday(now, w.day)}
		}
	}

	return Directive{Kind: KindInvalid}
}

func containsAny(text string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(text, sub) {
			return true
		}
	}

	return false
}

func tomorrowMorning(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)

	return time.Date(next.Year(), next.Month(), next.Day(), morningHour, 0, 0, 0, now.Location())
}

// nextWeekday returns the next occurrence of day at 09:00, never today:
// if now is already on that weekday it rolls a full week ahead.
func nextWeekday(now time.Time, day time.Weekday) time.Time {
	diff := (int(day) - int(now.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}

	next := now.AddDate(0, 0, diff)

	return time.Date(next.Year(), next.Month(), next.Day(), morningHour, 0, 0, 0, now.Location())
}
