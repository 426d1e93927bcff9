// Package capabilities holds the tools, resources and prompts the starter
// server ships with.
package capabilities

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-starter/server"
)

// Clock supplies the times reported by health and server-info.
type Clock interface {
	Now() time.Time
	Started() time.Time
}

// SystemClock reads the wall clock. Started is fixed at construction.
type SystemClock struct {
	started time.Time
}

// NewSystemClock returns a clock whose start time is now.
func NewSystemClock() *SystemClock {
	return &SystemClock{started: time.Now()}
}

func (c *SystemClock) Now() time.Time     { return time.Now() }
func (c *SystemClock) Started() time.Time { return c.started }

// TimestampLayout is ISO 8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func timestamp(c Clock) string {
	return c.Now().UTC().Format(TimestampLayout)
}

// uptime returns the seconds elapsed since the clock started.
func uptime(c Clock) float64 {
	return c.Now().Sub(c.Started()).Seconds()
}

// Register adds every bundled capability to srv. Registration problems are
// also recorded on srv and reported by srv.Err.
func Register(srv *server.Server, info server.Info, clock Clock) error {
	if clock == nil {
		clock = NewSystemClock()
	}
	return errors.Join(
		RegisterEcho(srv),
		RegisterHealth(srv, clock),
		RegisterServerInfo(srv, info, clock),
		RegisterSummarize(srv),
	)
}
