package server

import (
	"context"
	"strings"
)

// ResourceContent is one item of a resource read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64 encoded binary data
}

// ResourceResult is the payload of a resources/read response.
type ResourceResult struct {
	Contents []ResourceContent `json:"contents"`
}

func (*ResourceResult) Kind() Kind { return KindResource }

// ResourceHandler reads a resource. Resources are addressed by their fixed
// URI and take no arguments.
type ResourceHandler func(ctx context.Context) (*ResourceResult, error)

// ResourceDescriptor describes a registered resource.
type ResourceDescriptor struct {
	Name        string
	URI         string
	Description string
	MimeType    string
}

// RegisterResource adds a resource to the registry. Both the name and the
// URI must be unique.
func (s *Server) RegisterResource(desc ResourceDescriptor, handler ResourceHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admit(KindResource, desc.Name, handler != nil); err != nil {
		return s.fail(err)
	}
	if !validURI(desc.URI) {
		return s.fail(&ConfigError{Kind: KindResource, Name: desc.Name, Err: ErrInvalidURI})
	}
	if _, exists := s.resources[desc.Name]; exists {
		return s.fail(&ConfigError{Kind: KindResource, Name: desc.Name, Err: ErrDuplicateName})
	}
	if _, exists := s.uris[desc.URI]; exists {
		return s.fail(&ConfigError{Kind: KindResource, Name: desc.Name, Err: ErrDuplicateURI})
	}

	s.resources[desc.Name] = &resourceEntry{desc: desc, handler: handler}
	s.uris[desc.URI] = desc.Name
	return nil
}

// LookupResource returns the descriptor of the resource registered at uri.
// Only exact matches count.
func (s *Server) LookupResource(uri string) (ResourceDescriptor, bool) {
	entry := s.resourceAt(uri)
	if entry == nil {
		return ResourceDescriptor{}, false
	}
	return entry.desc, true
}

func (s *Server) resourceAt(uri string) *resourceEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.uris[uri]
	if !ok {
		return nil
	}
	return s.resources[name]
}

func validURI(uri string) bool {
	scheme, rest, ok := strings.Cut(uri, "://")
	return ok && scheme != "" && rest != ""
}

// ResourceBuilder provides a fluent API for registering resources.
type ResourceBuilder struct {
	desc   ResourceDescriptor
	server *Server
	err    error
}

// Resource starts building a new resource with the given name and URI.
func (s *Server) Resource(name, uri string) *ResourceBuilder {
	return &ResourceBuilder{desc: ResourceDescriptor{Name: name, URI: uri}, server: s}
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(desc string) *ResourceBuilder {
	b.desc.Description = desc
	return b
}

// MimeType sets the MIME type of the resource content.
func (b *ResourceBuilder) MimeType(mimeType string) *ResourceBuilder {
	b.desc.MimeType = mimeType
	return b
}

// Handler registers the resource.
func (b *ResourceBuilder) Handler(fn ResourceHandler) *ResourceBuilder {
	b.err = b.server.RegisterResource(b.desc, fn)
	return b
}

// Err returns the registration error, if any.
func (b *ResourceBuilder) Err() error {
	return b.err
}
