// Package gate decides whether acquisition is permitted at a given wall-clock
// time. A capture device that is only useful during daylight gets a Window of
// UTC hours; outside the window the scheduler still wakes on cadence but skips
// the acquisition, so the schedule never drifts.
package gate

import (
	"fmt"
	"time"
)

// Window is a half-open range of UTC hours [StartHourUTC, EndHourUTC) during
// which acquisition is permitted. Gating is whole-hour: minutes are ignored.
type Window struct {
	// StartHourUTC is the first hour (inclusive) of the open window, 0-23.
	StartHourUTC int `yaml:"start_hour_utc"`

	// EndHourUTC is the first hour after the window closes (exclusive), 1-24.
	EndHourUTC int `yaml:"end_hour_utc"`
}

// Validate checks the window bounds. It is called during configuration
// validation, before any loop starts.
func (w *Window) Validate() error {
	if w.StartHourUTC < 0 || w.StartHourUTC > 23 {
		return fmt.Errorf("start_hour_utc %d out of range [0,23]", w.StartHourUTC)
	}
	if w.EndHourUTC < 1 || w.EndHourUTC > 24 {
		return fmt.Errorf("end_hour_utc %d out of range [1,24]", w.EndHourUTC)
	}
	if w.StartHourUTC >= w.EndHourUTC {
		return fmt.Errorf("start_hour_utc %d must be before end_hour_utc %d", w.StartHourUTC, w.EndHourUTC)
	}
	return nil
}

// IsOpen reports whether acquisition is permitted at time now. A nil window
// is always open. The check is a pure function of now's UTC hour.
func (w *Window) IsOpen(now time.Time) bool {
	if w == nil {
		return true
	}
	hour := now.UTC().Hour()
	return hour >= w.StartHourUTC && hour < w.EndHourUTC
}

// String returns the window in "[start,end)" form for logs.
func (w *Window) String() string {
	if w == nil {
		return "always-open"
	}
	return fmt.Sprintf("[%02d,%02d)", w.StartHourUTC, w.EndHourUTC)
}
