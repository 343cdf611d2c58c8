// Package metrics records build activity. The default recorder is a no-op;
// the serve command swaps in a Prometheus-backed one.
package metrics

import "time"

// Recorder receives build lifecycle events.
type Recorder interface {
	BuildStarted()
	BuildSucceeded(d time.Duration)
	BuildFailed()
}

// NoopRecorder discards all events.
type NoopRecorder struct{}

func (NoopRecorder) BuildStarted()                {}
func (NoopRecorder) BuildSucceeded(time.Duration) {}
func (NoopRecorder) BuildFailed()                 {}
