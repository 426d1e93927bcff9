package server

import (
	"context"

	"github.com/felixgeelhaar/mcp-starter/schema"
)

// RoleUser is the role of messages rendered by prompts.
const RoleUser = "user"

// PromptMessage is one message of a prompt result.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// UserMessage returns a text message with the user role.
func UserMessage(text string) PromptMessage {
	return PromptMessage{Role: RoleUser, Content: TextContent(text)}
}

// PromptResult is the payload of a prompts/get response.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

func (*PromptResult) Kind() Kind { return KindPrompt }

// PromptArgument describes one prompt argument in prompts/list.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptHandler renders a prompt from validated arguments.
type PromptHandler func(ctx context.Context, args Arguments) (*PromptResult, error)

// PromptDescriptor describes a registered prompt.
type PromptDescriptor struct {
	Name        string
	Description string
	Args        schema.Shape
}

// Arguments lists the prompt arguments sorted by name.
func (d PromptDescriptor) Arguments() []PromptArgument {
	names := d.Args.Names()
	args := make([]PromptArgument, 0, len(names))
	for _, name := range names {
		field := d.Args[name]
		args = append(args, PromptArgument{
			Name:        name,
			Description: field.Description,
			Required:    !field.IsOptional(),
		})
	}
	return args
}

// RegisterPrompt adds a prompt to the registry.
func (s *Server) RegisterPrompt(desc PromptDescriptor, handler PromptHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.admit(KindPrompt, desc.Name, handler != nil); err != nil {
		return s.fail(err)
	}
	if _, exists := s.prompts[desc.Name]; exists {
		return s.fail(&ConfigError{Kind: KindPrompt, Name: desc.Name, Err: ErrDuplicateName})
	}

	s.prompts[desc.Name] = &promptEntry{desc: desc, handler: handler}
	return nil
}

// LookupPrompt returns the descriptor of a registered prompt.
func (s *Server) LookupPrompt(name string) (PromptDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[name]
	if !ok {
		return PromptDescriptor{}, false
	}
	return p.desc, true
}

// PromptBuilder provides a fluent API for registering prompts.
type PromptBuilder struct {
	desc   PromptDescriptor
	server *Server
	err    error
}

// Prompt starts building a new prompt with the given name.
func (s *Server) Prompt(name string) *PromptBuilder {
	return &PromptBuilder{desc: PromptDescriptor{Name: name}, server: s}
}

// Description sets the prompt description.
func (b *PromptBuilder) Description(desc string) *PromptBuilder {
	b.desc.Description = desc
	return b
}

// Arguments declares the prompt's argument contract.
func (b *PromptBuilder) Arguments(shape schema.Shape) *PromptBuilder {
	b.desc.Args = shape
	return b
}

// Handler registers the prompt.
func (b *PromptBuilder) Handler(fn PromptHandler) *PromptBuilder {
	b.err = b.server.RegisterPrompt(b.desc, fn)
	return b
}

// Err returns the registration error, if any.
func (b *PromptBuilder) Err() error {
	return b.err
}
