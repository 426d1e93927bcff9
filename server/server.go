package server

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/mcp-starter/middleware"
	"github.com/felixgeelhaar/mcp-starter/protocol"
	"github.com/felixgeelhaar/mcp-starter/schema"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name    string
	Version string
}

// Capabilities reports which capability families have registrations.
type Capabilities struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// Manifest represents the server manifest returned to clients.
type Manifest struct {
	Name            string       `json:"name"`
	Version         string       `json:"version"`
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
}

// Option configures a Server.
type Option func(*Server)

// WithValidator replaces the schema validator used by Dispatch.
func WithValidator(v schema.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithLogger sets the logger used to report dispatch faults.
func WithLogger(l middleware.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server owns one capability registry. It is populated during startup,
// sealed before the first request is dispatched, and read-only afterwards.
type Server struct {
	mu       sync.RWMutex
	sealOnce sync.Once
	sealed   bool
	errs     []error

	info      Info
	validator schema.Validator
	logger    middleware.Logger

	tools     map[string]*toolEntry
	resources map[string]*resourceEntry
	uris      map[string]string // resource uri -> resource name
	prompts   map[string]*promptEntry
}

type toolEntry struct {
	desc    ToolDescriptor
	handler ToolHandler
}

type resourceEntry struct {
	desc    ResourceDescriptor
	handler ResourceHandler
}

type promptEntry struct {
	desc    PromptDescriptor
	handler PromptHandler
}

// New creates a server with an empty registry.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:      info,
		validator: schema.DefaultValidator,
		logger:    middleware.NopLogger{},
		tools:     make(map[string]*toolEntry),
		resources: make(map[string]*resourceEntry),
		uris:      make(map[string]string),
		prompts:   make(map[string]*promptEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	return s.info
}

// Manifest returns the server manifest for MCP initialization.
func (s *Server) Manifest() Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: protocol.MCPVersion,
		Capabilities: Capabilities{
			Tools:     len(s.tools) > 0,
			Resources: len(s.resources) > 0,
			Prompts:   len(s.prompts) > 0,
		},
	}
}

// Seal freezes the registry. Later registrations fail with ErrSealed.
// Seal is idempotent.
func (s *Server) Seal() {
	s.sealOnce.Do(func() {
		s.mu.Lock()
		s.sealed = true
		s.mu.Unlock()
	})
}

// Sealed reports whether the registry has been sealed.
func (s *Server) Sealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed
}

// Err returns every registration failure seen so far, joined, or nil.
// A server with a non-nil Err must not begin serving.
func (s *Server) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(s.errs...)
}

// Tools returns the registered tool descriptors sorted by name.
func (s *Server) Tools() []ToolDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ToolDescriptor, 0, len(s.tools))
	for _, t := range s.tools {
		result = append(result, t.desc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Resources returns the registered resource descriptors sorted by name.
func (s *Server) Resources() []ResourceDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]ResourceDescriptor, 0, len(s.resources))
	for _, r := range s.resources {
		result = append(result, r.desc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Prompts returns the registered prompt descriptors sorted by name.
func (s *Server) Prompts() []PromptDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]PromptDescriptor, 0, len(s.prompts))
	for _, p := range s.prompts {
		result = append(result, p.desc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// admit checks the preconditions shared by every registration. The caller
// must hold s.mu.
func (s *Server) admit(kind Kind, name string, hasHandler bool) error {
	switch {
	case s.sealed:
		return &ConfigError{Kind: kind, Name: name, Err: ErrSealed}
	case !validName(name):
		return &ConfigError{Kind: kind, Name: name, Err: ErrInvalidName}
	case !hasHandler:
		return &ConfigError{Kind: kind, Name: name, Err: ErrNilHandler}
	}
	return nil
}

// fail records err and returns it. The caller must hold s.mu.
func (s *Server) fail(err error) error {
	s.errs = append(s.errs, err)
	return err
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-.", r):
		default:
			return false
		}
	}
	return true
}
