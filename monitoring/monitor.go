// Package monitoring turns a running timeline into a small HTTP server for
// external control and observation.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/brycehanscomb/cuesheet/driver"
	"github.com/brycehanscomb/cuesheet/timeline"
)

// Monitor exposes play/pause/seek control and timeline state over HTTP. All
// control goes through the pump, which is the single logical controller of
// the scheduler; the monitor never drives the scheduler directly.
type Monitor struct {
	pump       *driver.Pump
	sched      *timeline.Scheduler
	portNumber int
	openInWeb  bool
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor URL in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openInWeb = true

	return m
}

// RegisterPump registers the pump that controls the timeline.
func (m *Monitor) RegisterPump(p *driver.Pump) {
	m.pump = p
}

// RegisterScheduler registers the scheduler whose state is served.
func (m *Monitor) RegisterScheduler(s *timeline.Scheduler) {
	m.sched = s
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/play", m.play)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/seek/{time}", m.seek)
	r.HandleFunc("/api/cues", m.listCues)
	r.HandleFunc("/api/scheduler", m.schedulerState)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring timeline with %s\n", url)

	if m.openInWeb {
		_ = browser.OpenURL(url)
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%d}", m.pump.Now())
}

func (m *Monitor) play(w http.ResponseWriter, _ *http.Request) {
	m.pump.Play()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.pump.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) seek(w http.ResponseWriter, r *http.Request) {
	target, err := strconv.ParseInt(mux.Vars(r)["time"], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	m.pump.Seek(timeline.VTimeInMS(target))
	_, err = w.Write(nil)
	dieOnErr(err)
}

type cueRsp struct {
	ID        string `json:"id"`
	StartTime int64  `json:"start_time"`
	FireCount int    `json:"fire_count"`
}

func (m *Monitor) listCues(w http.ResponseWriter, _ *http.Request) {
	cues := m.pump.Cues()

	rsp := make([]cueRsp, 0, len(cues))
	for _, c := range cues {
		rsp = append(rsp, cueRsp{
			ID:        c.ID(),
			StartTime: int64(c.StartTime()),
			FireCount: m.pump.FireCount(c),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) schedulerState(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.sched)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
