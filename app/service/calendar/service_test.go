package calendar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"metbot/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, 08:00.
var testNow = time.Date(2025, 6, 16, 8, 0, 0, 0, time.UTC)

func testService(t *testing.T, busy []busyInterval) *Service {
	t.Helper()

	busyFile := filepath.Join(t.TempDir(), "busy.json")
	if busy != nil {
		data, err := json.Marshal(busy)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(busyFile, data, 0644))
	}

	return &Service{
		cfg: &config.Config{
			Calendar: config.Calendar{
				DaysAhead:   3,
				SlotMinutes: 30,
				DayStart:    "09:00",
				DayEnd:      "11:00",
				BusyFile:    busyFile,
			},
		},
		now: func() time.Time { return testNow },
	}
}

func TestFindSlotsFreeDays(t *testing.T) {
	svc := testService(t, nil)

	slots, err := svc.FindSlots(3, 30)
	require.NoError(t, err)

	// Tue, Wed, Thu: four half-hour slots between 09:00 and 11:00 each.
	require.Len(t, slots, 12)
	assert.Equal(t, "Tuesday", slots[0].DayOfWeek)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "09:30", slots[0].EndTime)
}

func TestFindSlotsSubtractsBusy(t *testing.T) {
	tuesday := testNow.AddDate(0, 0, 1).Format("2006-01-02")
	svc := testService(t, []busyInterval{
		{Date: tuesday, Start: "09:15", End: "10:30"},
	})

	slots, err := svc.FindSlots(1, 30)
	require.NoError(t, err)

	// 09:00 and 09:30 and 10:00 overlap the busy block; only 10:30 is left.
	require.Len(t, slots, 1)
	assert.Equal(t, "10:30", slots[0].StartTime)
}

func TestFindSlotsSkipsWeekends(t *testing.T) {
	// Friday: the following two days are the weekend.
	svc := testService(t, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC) }

	slots, err := svc.FindSlots(3, 30)
	require.NoError(t, err)

	days := pie.Unique(pie.Map(slots, func(s Slot) string { return s.DayOfWeek }))
	assert.Equal(t, []string{"Monday"}, days)
}

func TestFindSlotsMissingBusyFile(t *testing.T) {
	svc := testService(t, nil)
	svc.cfg.Calendar.BusyFile = filepath.Join(t.TempDir(), "absent.json")

	slots, err := svc.FindSlots(1, 60)
	require.NoError(t, err)
	assert.NotEmpty(t, slots)
}

func TestFindSlotsMalformedBusyFile(t *testing.T) {
	busyFile := filepath.Join(t.TempDir(), "busy.json")
	require.NoError(t, os.WriteFile(busyFile, []byte("{nope"), 0644))

	svc := testService(t, nil)
	svc.cfg.Calendar.BusyFile = busyFile

	_, err := svc.FindSlots(1, 30)
	assert.Error(t, err)
}
