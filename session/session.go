// Package session assembles a scheduler, its pump, and the optional
// recording and monitoring layers into one runnable timeline.
package session

import (
	"github.com/brycehanscomb/cuesheet/driver"
	"github.com/brycehanscomb/cuesheet/monitoring"
	"github.com/brycehanscomb/cuesheet/recording"
	"github.com/brycehanscomb/cuesheet/timeline"
)

// A Session provides the services required to run a timeline.
type Session struct {
	id string

	scheduler *timeline.Scheduler
	pump      *driver.Pump
	recorder  *recording.SQLiteWriter
	monitor   *monitoring.Monitor
}

// ID returns the ID of the session.
func (s *Session) ID() string {
	return s.id
}

// Scheduler returns the scheduler used in the session.
func (s *Session) Scheduler() *timeline.Scheduler {
	return s.scheduler
}

// Pump returns the pump that drives the session's timeline.
func (s *Session) Pump() *driver.Pump {
	return s.pump
}

// Recorder returns the fire recorder, or nil when recording is disabled.
func (s *Session) Recorder() *recording.SQLiteWriter {
	return s.recorder
}

// Monitor returns the monitor, or nil when monitoring is disabled.
func (s *Session) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Terminate stops the pump, flushes and closes the recorder, and destroys
// the scheduler. The session must not be used afterward.
func (s *Session) Terminate() {
	s.pump.Stop()

	if s.recorder != nil {
		s.recorder.Flush()
		s.recorder.DB.Close()
	}

	s.scheduler.Destroy()
}
