package formatting

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// Formatter renders a subject or body value
type Formatter interface {
	Format(value string) string
}

// FormatterFunc adapts a plain function to Formatter
type FormatterFunc func(value string) string

// Format calls f(value)
func (f FormatterFunc) Format(value string) string {
	return f(value)
}

// Resolver formats a value with the formatter registered under name
type Resolver interface {
	Format(name, value string) (string, error)
}

type registration struct {
	// typ is nil for factory registrations
	typ     reflect.Type
	factory func() any
}

// Registry maps formatter names to factories
type Registry struct {
	entries map[string]registration
	logger  *slog.Logger
	mu      sync.RWMutex
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for registration events
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty formatter registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]registration),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register registers the struct type of prototype under name. Every
// resolution creates a new zero value of that type.
func (r *Registry) Register(name string, prototype any) error {
	if name == "" {
		return fmt.Errorf("formatter name cannot be empty")
	}

	if prototype == nil {
		return fmt.Errorf("formatter type cannot be nil")
	}

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return fmt.Errorf("formatter type must be a struct, got %v", t.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.entries[name]; exists {
		if existing.typ == t {
			return nil
		}
		return fmt.Errorf("formatter name %s already registered to %s", name, existing.describe())
	}

	r.entries[name] = registration{
		typ: t,
		factory: func() any {
			return reflect.New(t).Interface()
		},
	}
	r.logger.Debug("formatter registered", "name", name, "type", t.String())

	return nil
}

// RegisterType registers prototype under its package-qualified type name
func (r *Registry) RegisterType(prototype any) error {
	if prototype == nil {
		return fmt.Errorf("formatter type cannot be nil")
	}

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		return fmt.Errorf("cannot determine type name for %v", t)
	}

	if t.PkgPath() != "" {
		name = t.PkgPath() + "." + name
	}

	return r.Register(name, prototype)
}

// RegisterFactory registers an explicit no-argument factory under name
func (r *Registry) RegisterFactory(name string, factory func() any) error {
	if name == "" {
		return fmt.Errorf("formatter name cannot be empty")
	}

	if factory == nil {
		return fmt.Errorf("formatter factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.entries[name]; exists {
		return fmt.Errorf("formatter name %s already registered to %s", name, existing.describe())
	}

	r.entries[name] = registration{factory: factory}
	r.logger.Debug("formatter factory registered", "name", name)

	return nil
}

// Resolve creates the formatter registered under name
func (r *Registry) Resolve(name string) (Formatter, error) {
	r.mu.RLock()
	entry, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &UnknownFormatterError{Name: name}
	}

	instance := entry.factory()
	f, ok := instance.(Formatter)
	if !ok {
		return nil, &FormatterContractViolationError{
			Name: name,
			Type: fmt.Sprintf("%T", instance),
		}
	}

	return f, nil
}

// Format resolves name and renders value with it once
func (r *Registry) Format(name, value string) (string, error) {
	f, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	return f.Format(value), nil
}

// IsRegistered checks if a formatter name is registered
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[name]
	return exists
}

// List returns all registered formatter names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (e registration) describe() string {
	if e.typ != nil {
		return e.typ.String()
	}
	return "a factory"
}

// Global registry instance
var globalRegistry = NewRegistry()

// Default returns the global formatter registry
func Default() *Registry {
	return globalRegistry
}

// Register registers a formatter type with the global registry
func Register(name string, prototype any) error {
	return globalRegistry.Register(name, prototype)
}

// RegisterFactory registers a formatter factory with the global registry
func RegisterFactory(name string, factory func() any) error {
	return globalRegistry.RegisterFactory(name, factory)
}

// Format renders value with a formatter from the global registry
func Format(name, value string) (string, error) {
	return globalRegistry.Format(name, value)
}
