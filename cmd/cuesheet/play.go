package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brycehanscomb/cuesheet/session"
	"github.com/brycehanscomb/cuesheet/timeline"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run a demo beat timeline for a while",
	Run:   runPlay,
}

var (
	flagBeat        int64
	flagCount       int
	flagFor         time.Duration
	flagRate        float64
	flagMonitorPort int
	flagNoMonitor   bool
	flagNoRecording bool
	flagOutput      string
	flagVerbose     bool
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Int64Var(&flagBeat, "beat", 500,
		"beat interval in virtual milliseconds")
	playCmd.Flags().IntVar(&flagCount, "count", 0,
		"stop the beat after this many fires (0 means unlimited)")
	playCmd.Flags().DurationVar(&flagFor, "for", 3*time.Second,
		"how long to run the timeline")
	playCmd.Flags().Float64Var(&flagRate, "rate", 1.0,
		"playback rate multiplier")
	playCmd.Flags().IntVar(&flagMonitorPort, "monitor-port", 0,
		"port for the monitoring server (0 picks a random port)")
	playCmd.Flags().BoolVar(&flagNoMonitor, "no-monitor", false,
		"disable the monitoring server")
	playCmd.Flags().BoolVar(&flagNoRecording, "no-recording", false,
		"disable fire-history recording")
	playCmd.Flags().StringVar(&flagOutput, "output", "",
		"fire history database name")
	playCmd.Flags().BoolVar(&flagVerbose, "verbose", false,
		"log every firing to stderr")
}

func runPlay(_ *cobra.Command, _ []string) {
	builder := session.MakeBuilder().WithRate(flagRate)

	if flagNoMonitor {
		builder = builder.WithoutMonitoring()
	} else if flagMonitorPort > 0 {
		builder = builder.WithMonitorPort(flagMonitorPort)
	}

	if flagNoRecording {
		builder = builder.WithoutRecording()
	} else if flagOutput != "" {
		builder = builder.WithOutputFileName(flagOutput)
	}

	sess := builder.Build()

	if flagVerbose {
		sess.Scheduler().AcceptHook(timeline.NewFireLogger(
			log.New(os.Stderr, "fire: ", 0)))
	}

	beat := timeline.NewCue(0).Repeats(timeline.VTimeInMS(flagBeat))

	var cue timeline.Cue = beat
	if flagCount > 0 {
		cue = beat.Times(flagCount)
	}

	fired := 0
	sched := sess.Scheduler()
	sess.Pump().Subscribe(cue, func() {
		fired++
		fmt.Printf("beat %d at %dms\n", fired, sched.CurrentTime())
	})

	sess.Pump().Play()
	time.Sleep(flagFor)
	sess.Terminate()

	fmt.Printf("fired %d beats over %s\n", fired, flagFor)
}
