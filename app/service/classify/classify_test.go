package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 15:30 local.
var testNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.Local)

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		text string
		kind Kind
	}{
		{"now", KindNow},
		{"send it", KindNow},
		{"  Immediately please  ", KindNow},
		{"tomorrow", KindTomorrow},
		{"in the morning", KindTomorrow},
		{"no", KindNoReminder},
		{"never mind", KindNoReminder},
		{"in 5 minutes", KindCustomAt},
		{"in 1 hour", KindCustomAt},
		{"in 2 days", KindCustomAt},
		{"friday", KindCustomAt},
		{"maybe on Monday?", KindCustomAt},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := Classify(tt.text, testNow)
			assert.Equal(t, tt.kind, d.Kind)
			assert.True(t, IsRecognized(tt.text))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Rule order resolves overlapping keywords: earlier rules win.
	assert.Equal(t, KindNow, Classify("now or tomorrow", testNow).Kind)
	assert.Equal(t, KindNow, Classify("tomorrow? no, now", testNow).Kind)
	assert.Equal(t, KindTomorrow, Classify("tomorrow, not friday", testNow).Kind)
	assert.Equal(t, KindNoReminder, Classify("no, in 5 minutes", testNow).Kind)
}

func TestClassifyRelative(t *testing.T) {
	d := Classify("in 5 minutes", testNow)
	assert.Equal(t, testNow.Add(5*time.Minute), d.At)

	d = Classify("remind me in 2 hours", testNow)
	assert.Equal(t, testNow.Add(2*time.Hour), d.At)

	d = Classify("in 3 days", testNow)
	assert.Equal(t, testNow.Add(72*time.Hour), d.At)
}

func TestClassifyTomorrowMorning(t *testing.T) {
	d := Classify("tomorrow", testNow)

	assert.Equal(t, testNow.AddDate(0, 0, 1).Day(), d.At.Day())
	assert.Equal(t, 9, d.At.Hour())
	assert.Equal(t, 0, d.At.Minute())
}

func TestClassifyWeekday(t *testing.T) {
	d := Classify("friday", testNow)
	require.Equal(t, KindCustomAt, d.Kind)
	assert.Equal(t, time.Friday, d.At.Weekday())
	assert.Equal(t, 9, d.At.Hour())
	assert.True(t, d.At.After(testNow))
	assert.Less(t, d.At.Sub(testNow), 7*24*time.Hour)
}

func TestClassifyWeekdaySameDayRollsAWeek(t *testing.T) {
	// testNow is a Wednesday; "wednesday" must mean next week, never today.
	d := Classify("wednesday", testNow)
	require.Equal(t, KindCustomAt, d.Kind)
	assert.Equal(t, time.Wednesday, d.At.Weekday())
	assert.Equal(t, testNow.AddDate(0, 0, 7).Day(), d.At.Day())
}

func TestClassifyUnrecognizedFallsBackToTomorrow(t *testing.T) {
	// The fallback directive exists but callers gate on IsRecognized, so it
	// stays unobservable in the normal flow.
	assert.False(t, IsRecognized("blah"))

	d := Classify("blah", testNow)
	assert.Equal(t, KindTomorrow, d.Kind)
	assert.Equal(t, 9, d.At.Hour())
}

func TestClassifyDeterministic(t *testing.T) {
	first := Classify("friday or monday", testNow)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify("friday or monday", testNow))
	}
}
