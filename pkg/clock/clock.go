// Package clock provides the wall-clock timestamps stamped on readings.
package clock

import "time"

const (
	// Layout is the timestamp format written to the log.
	Layout = "2006-01-02 15:04:05"
	// Unset is returned while the clock has not been initialized.
	Unset = "0000-00-00 00:00:00"
)

// Provider supplies formatted timestamps.
type Provider interface {
	Timestamp() string
}

// Boot is a clock set once at boot that advances with monotonic uptime.
// A zero boot time means the clock was never set.
type Boot struct {
	boot   time.Time
	uptime func() time.Duration
}

// NewBoot returns a clock reading boot at the moment of the call.
func NewBoot(boot time.Time) *Boot {
	start := time.Now()
	return &Boot{
		boot:   boot,
		uptime: func() time.Duration { return time.Since(start) },
	}
}

// Timestamp returns the current time or Unset.
func (b *Boot) Timestamp() string {
	if b.boot.IsZero() {
		return Unset
	}
	return b.boot.Add(b.uptime()).Format(Layout)
}

// System uses the host wall clock.
type System struct{}

// Timestamp returns the local host time.
func (System) Timestamp() string {
	return time.Now().Format(Layout)
}
