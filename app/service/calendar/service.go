package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"metbot/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Slot is a free interval inside the configured working hours.
type Slot struct {
	Date      string `json:"date"`       // 2006-01-02
	StartTime string `json:"start_time"` // 15:04
	EndTime   string `json:"end_time"`   // 15:04
	DayOfWeek string `json:"day_of_week"`
}

// busyInterval is one entry of the busy file, kept as a JSON array so the
// file can be edited by hand or synced by an external tool.
type busyInterval struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type Service struct {
	cfg *config.Config
	now func() time.Time

	mu sync.RWMutex
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg: do.MustInvoke[*config.Config](di),
		now: time.Now,
	}, nil
}

// FindSlots returns free slots of the given duration for the next daysAhead
// days, weekends excluded, ascending. The result may be empty.
func (s *Service) FindSlots(daysAhead, durationMinutes int) ([]Slot, error) {
	busy, err := s.loadBusy()
	if err != nil {
		return nil, err
	}

	dayStart, err := parseClock(s.cfg.Calendar.DayStart)
	if err != nil {
		return nil, fmt.Errorf("invalid day_start: %w", err)
	}
	dayEnd, err := parseClock(s.cfg.Calendar.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid day_end: %w", err)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	now := s.now()

	var result []Slot

	for offset := 1; offset <= daysAhead; offset++ {
		day := now.AddDate(0, 0, offset)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		date := day.Format("2006-01-02")
		dayBusy := pie.Filter(busy, func(b busyInterval) bool {
			return b.Date == date
		})

		for at := dayStart; at+duration <= dayEnd; at += duration {
			if overlapsAny(dayBusy, at, at+duration) {
				continue
			}

			result = append(result, Slot{
				Date:      date,
				StartTime: formatClock(at),
				EndTime:   formatClock(at + duration),
				DayOfWeek: day.Weekday().String(),
			})
		}
	}

	return result, nil
}

func (s *Service) loadBusy() ([]busyInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.cfg.Calendar.BusyFile)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read busy file: %w", err)
	}

	var busy []busyInterval
	if err := json.Unmarshal(data, &busy); err != nil {
		return nil, fmt.Errorf("failed to parse busy file: %w", err)
	}

	return busy, nil
}

func overlapsAny(busy []busyInterval, start, end time.Duration) bool {
	for _, b := range busy {
		bStart, err1 := parseClock(b.Start)
		bEnd, err2 := parseClock(b.End)
		if err1 != nil || err2 != nil {
			continue
		}

		if start < bEnd && bStart < end {
			return true
		}
	}

	return false
}

// parseClock converts "HH:MM" to an offset from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}

	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
