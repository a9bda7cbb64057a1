package session

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"

	"github.com/brycehanscomb/cuesheet/driver"
	"github.com/brycehanscomb/cuesheet/monitoring"
	"github.com/brycehanscomb/cuesheet/recording"
	"github.com/brycehanscomb/cuesheet/timeline"
)

// Builder can be used to build a session.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
	pumpResolution time.Duration
	rate           float64
}

// MakeBuilder creates a new builder with monitoring and recording on, at
// real-time rate.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:      true,
		recordingOn:    true,
		pumpResolution: 10 * time.Millisecond,
		rate:           1.0,
	}
}

// WithoutMonitoring sets the session to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutRecording sets the session to not persist fire history.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the fire
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithPumpResolution sets the wall-clock tick resolution of the pump.
func (b Builder) WithPumpResolution(resolution time.Duration) Builder {
	b.pumpResolution = resolution
	return b
}

// WithRate sets the playback rate multiplier of the pump.
func (b Builder) WithRate(rate float64) Builder {
	b.rate = rate
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// environmentOverrides fills unset parameters from the environment. A .env
// file in the working directory is honored, so deployments can configure the
// monitor port and output file without touching code.
func (b Builder) environmentOverrides() Builder {
	_ = godotenv.Load()

	if v := os.Getenv("CUESHEET_MONITOR_PORT"); v != "" &&
		b.monitorOn && b.monitorPort == 0 {
		port, err := strconv.Atoi(v)
		if err != nil {
			panic("CUESHEET_MONITOR_PORT must be an integer")
		}
		b.monitorPort = port
	}

	if v := os.Getenv("CUESHEET_OUTPUT"); v != "" &&
		b.recordingOn && b.outputFileName == "" {
		b.outputFileName = v
	}

	return b
}

// Build builds the session and starts its pump.
func (b Builder) Build() *Session {
	b.parametersMustBeValid()
	b = b.environmentOverrides()

	s := &Session{
		id: xid.New().String(),
	}

	s.scheduler = timeline.NewScheduler()
	s.pump = driver.NewPump(s.scheduler).
		WithRate(b.rate).
		WithResolution(b.pumpResolution)

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "cuesheet_" + s.id
		}

		s.recorder = recording.NewSQLiteWriter(outputPath)
		s.recorder.Init()
		recording.RecordFires(s.scheduler, s.recorder)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterScheduler(s.scheduler)
		s.monitor.RegisterPump(s.pump)
		s.monitor.StartServer()
	}

	s.pump.Start()

	return s
}
