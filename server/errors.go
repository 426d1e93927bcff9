package server

import (
	"errors"
	"fmt"
)

// Registration failures. They are always wrapped in a *ConfigError.
var (
	ErrInvalidName   = errors.New("name must be non-empty and contain only letters, digits, '_', '-' or '.'")
	ErrDuplicateName = errors.New("name already registered")
	ErrInvalidURI    = errors.New("resource uri must be non-empty and contain a scheme")
	ErrDuplicateURI  = errors.New("resource uri already registered")
	ErrNilHandler    = errors.New("handler is nil")
	ErrSealed        = errors.New("registry is sealed")
)

// ConfigError reports a capability that could not be registered. It is a
// startup-time programming error: a server holding one must not serve.
type ConfigError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("server: cannot register %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
