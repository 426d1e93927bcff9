package testutil

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/transport"
)

// StdioSession runs the stdio transport against in-memory pipes, so tests
// see exactly the bytes a process peer would.
type StdioSession struct {
	t testing.TB

	stdin  *io.PipeWriter
	cancel context.CancelFunc
	done   chan error

	mu        sync.Mutex
	responses map[string]json.RawMessage
	arrived   chan struct{}
	lines     []string
}

// NewStdioSession starts serving handler over stdio. The session is closed
// at test cleanup.
func NewStdioSession(t testing.TB, handler transport.Handler, opts ...transport.StdioOption) *StdioSession {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	s := &StdioSession{
		t:         t,
		stdin:     inW,
		cancel:    cancel,
		done:      make(chan error, 1),
		responses: make(map[string]json.RawMessage),
		arrived:   make(chan struct{}, 1),
	}

	opts = append([]transport.StdioOption{transport.WithStdin(inR), transport.WithStdout(outW)}, opts...)
	tr := transport.NewStdio(opts...)
	go func() {
		err := tr.Serve(ctx, handler)
		_ = outW.Close()
		s.done <- err
	}()
	go s.readLoop(outR)

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func (s *StdioSession) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), transport.DefaultMaxMessageSize)
	for scanner.Scan() {
		line := scanner.Text()
		var head struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.Unmarshal([]byte(line), &head)

		s.mu.Lock()
		s.lines = append(s.lines, line)
		s.responses[string(head.ID)] = json.RawMessage(line)
		s.mu.Unlock()

		select {
		case s.arrived <- struct{}{}:
		default:
		}
	}
}

// WriteLine writes one raw line to the server's stdin.
func (s *StdioSession) WriteLine(line string) {
	s.t.Helper()
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		s.t.Fatalf("write stdin: %v", err)
	}
}

// Send writes a request with the given id.
func (s *StdioSession) Send(id any, method string, params any) {
	s.t.Helper()
	req := map[string]any{"jsonrpc": protocol.JSONRPCVersion, "id": id, "method": method}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	if err != nil {
		s.t.Fatalf("encode request: %v", err)
	}
	s.WriteLine(string(data))
}

// Await waits for the response whose id encodes to id and decodes it.
func (s *StdioSession) Await(id any) *protocol.Response {
	s.t.Helper()
	key, err := json.Marshal(id)
	if err != nil {
		s.t.Fatalf("encode id: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		s.mu.Lock()
		raw, ok := s.responses[string(key)]
		s.mu.Unlock()
		if ok {
			var resp protocol.Response
			if err := json.Unmarshal(raw, &resp); err != nil {
				s.t.Fatalf("decode response %s: %v", raw, err)
			}
			return &resp
		}

		select {
		case <-s.arrived:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			s.t.Fatalf("no response with id %s", key)
			return nil
		}
	}
}

// Call sends a request and waits for its response.
func (s *StdioSession) Call(id any, method string, params any) *protocol.Response {
	s.t.Helper()
	s.Send(id, method, params)
	return s.Await(id)
}

// Lines returns every line written to stdout so far.
func (s *StdioSession) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Close closes stdin and waits for the transport to finish. The transport
// treats EOF as a clean shutdown, so the error is normally nil.
func (s *StdioSession) Close() error {
	_ = s.stdin.Close()
	select {
	case err := <-s.done:
		s.done <- err
		return err
	case <-time.After(5 * time.Second):
		s.cancel()
		return fmt.Errorf("stdio session did not shut down")
	}
}

// DecodeResult decodes resp's result into v.
func DecodeResult(resp *protocol.Response, v any) error {
	if resp.Error != nil {
		return resp.Error
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
