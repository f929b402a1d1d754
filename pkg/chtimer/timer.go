// Package chtimer provides a small state-checked stopwatch and the
// measurement accumulator the experiment driver dumps to CSV.
package chtimer

import "time"

// State is the lifecycle state of a Timer.
type State int

const (
	Initial State = iota
	Running
	Finished
)

// Timer is a stopwatch that can only be started from Initial or Finished,
// stopped from Running, and read from Finished. Calling a method out of
// order is a programming error and panics rather than returning an error —
// there is no recoverable caller mistake here, only a bug.
type Timer struct {
	state State
	start time.Time
	dur   time.Duration
}

// Start begins timing. Panics if the timer is currently Running.
func (t *Timer) Start() {
	if t.state == Running {
		panic("chtimer: Start called while already Running")
	}
	t.state = Running
	t.start = time.Now()
}

// Stop ends timing. Panics if the timer is not Running.
func (t *Timer) Stop() {
	if t.state != Running {
		panic("chtimer: Stop called while not Running")
	}
	t.dur = time.Since(t.start)
	t.state = Finished
}

// Result returns the elapsed duration of the most recent Start/Stop pair.
// Panics if the timer has never finished a run.
func (t *Timer) Result() time.Duration {
	if t.state != Finished {
		panic("chtimer: Result called before a run finished")
	}
	return t.dur
}

// Measure runs fn, timing it, and returns the elapsed duration.
func Measure(fn func()) time.Duration {
	var t Timer
	t.Start()
	fn()
	t.Stop()
	return t.Result()
}

// Measurement accumulates named series of timing samples, as produced by
// the experiment driver and dumped via textgraph.WriteMeasurementCSV.
type Measurement struct {
	Data map[string][]time.Duration
}

// NewMeasurement returns an empty Measurement.
func NewMeasurement() *Measurement {
	return &Measurement{Data: make(map[string][]time.Duration)}
}

// Add appends a sample to the named column.
func (m *Measurement) Add(key string, d time.Duration) {
	m.Data[key] = append(m.Data[key], d)
}
