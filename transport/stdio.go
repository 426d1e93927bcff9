package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
)

// DefaultMaxMessageSize is the longest stdin line the stdio transport accepts.
const DefaultMaxMessageSize = 4 << 20

// Stdio speaks newline-delimited JSON-RPC over stdin and stdout.
//
// Each line is handled on its own goroutine, so a slow capability does not
// hold up the requests behind it. Responses are written whole, one per
// line, in completion order; peers match them by id. Stdout carries nothing
// but protocol frames.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	logger middleware.Logger

	maxMessageSize int
	drainTimeout   time.Duration

	mu       sync.Mutex
	inflight inflight
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStdioLogger sets the logger for transport-level faults.
func WithStdioLogger(l middleware.Logger) StdioOption {
	return func(s *Stdio) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxMessageSize caps the length of a single input line.
func WithMaxMessageSize(n int) StdioOption {
	return func(s *Stdio) {
		if n > 0 {
			s.maxMessageSize = n
		}
	}
}

// WithDrainTimeout bounds the wait for in-flight requests at shutdown.
func WithDrainTimeout(d time.Duration) StdioOption {
	return func(s *Stdio) {
		s.drainTimeout = d
	}
}

// NewStdio creates a stdio transport bound to the process streams.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:             os.Stdin,
		out:            os.Stdout,
		logger:         middleware.NopLogger{},
		maxMessageSize: DefaultMaxMessageSize,
		drainTimeout:   DefaultDrainTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve reads requests until stdin reaches EOF or ctx is canceled, then
// waits for the requests still in flight. EOF is a clean shutdown and
// yields nil.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, min(64*1024, s.maxMessageSize)), s.maxMessageSize)

	lines := make(chan []byte)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				scanErr <- ctx.Err()
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	var serveErr error
loop:
	for {
		select {
		case <-ctx.Done():
			serveErr = ctx.Err()
			break loop
		case line, ok := <-lines:
			if !ok {
				serveErr = <-scanErr
				break loop
			}
			if blank(line) {
				continue
			}
			if !s.inflight.start() {
				break loop
			}
			go func() {
				defer s.inflight.done()
				s.handleLine(ctx, handler, line)
			}()
		}
	}

	if err := s.inflight.drain(s.drainTimeout); err != nil {
		s.logger.Warn("stdio shutdown with requests in flight", middleware.F("pending", s.inflight.pending()))
	}
	switch {
	case serveErr == nil:
	case errors.Is(serveErr, context.Canceled):
		s.logger.Info("stdio transport stopped", middleware.F("reason", serveErr.Error()))
	default:
		s.logger.Error("stdio transport stopped", middleware.F("error", serveErr.Error()))
	}
	return serveErr
}

func (s *Stdio) handleLine(ctx context.Context, handler Handler, line []byte) {
	ctx = withMeta(ctx, "stdio", "")
	if resp := respond(ctx, handler, line); resp != nil {
		s.write(resp)
	}
}

// write emits resp as a single line. Writes are serialized so concurrent
// responses never interleave.
func (s *Stdio) write(resp *protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("encode response", middleware.F("error", err.Error()))
		data, _ = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError("response could not be encoded")))
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		s.logger.Error("write response", middleware.F("error", err.Error()))
	}
}
