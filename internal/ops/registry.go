// Package ops is the declaration surface for API operations. Each operation is
// registered once with its authorization requirement and invoked by name
// through an interceptor chain.
package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/instamunch/instamunch-api/internal/authz"
)

// Kind separates read operations from state-changing ones.
type Kind string

const (
	Query    Kind = "query"
	Mutation Kind = "mutation"
)

var (
	// ErrUnknownOperation is returned when no operation is registered under a name.
	ErrUnknownOperation = errors.New("ops: unknown operation")
	// ErrInvalidInput is returned when the input payload cannot be decoded.
	ErrInvalidInput = errors.New("ops: invalid input")
)

// Handler executes an operation with its raw JSON input.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

// Definition declares an operation. A nil Requirement marks it public.
type Definition struct {
	Name        string
	Kind        Kind
	Description string
	Requirement *authz.Requirement
	Handler     Handler
}

// Call is the invocation handed to interceptors.
type Call struct {
	Definition *Definition
	Input      json.RawMessage
}

// Next continues the interceptor chain.
type Next func(ctx context.Context, call *Call) (any, error)

// Interceptor wraps every operation invocation.
type Interceptor func(ctx context.Context, call *Call, next Next) (any, error)

// Registry holds operation definitions and the interceptor chain applied to them.
type Registry struct {
	defs  map[string]*Definition
	chain Next
}

// NewRegistry builds a registry. Interceptors run in the order given, outermost first.
func NewRegistry(interceptors ...Interceptor) *Registry {
	terminal := func(ctx context.Context, call *Call) (any, error) {
		return call.Definition.Handler(ctx, call.Input)
	}
	chain := Next(terminal)
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic, next := interceptors[i], chain
		chain = func(ctx context.Context, call *Call) (any, error) {
			return ic(ctx, call, next)
		}
	}
	return &Registry{defs: make(map[string]*Definition), chain: chain}
}

// Register adds definitions. Names must be unique and handlers non-nil.
func (r *Registry) Register(defs ...Definition) error {
	for i := range defs {
		def := defs[i]
		if def.Name == "" || def.Handler == nil {
			return fmt.Errorf("ops: definition %q incomplete", def.Name)
		}
		if _, exists := r.defs[def.Name]; exists {
			return fmt.Errorf("ops: operation %q already registered", def.Name)
		}
		if def.Kind == "" {
			def.Kind = Query
		}
		r.defs[def.Name] = &def
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(defs ...Definition) {
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, false
	}
	return *def, true
}

// Definitions lists registered operations sorted by name.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, *def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs the named operation through the interceptor chain.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (any, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return r.chain(ctx, &Call{Definition: def, Input: input})
}

// Typed adapts a handler taking a decoded input struct. Empty input decodes
// to the zero value.
func Typed[In, Out any](fn func(context.Context, In) (Out, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in In
		if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&in); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		return fn(ctx, in)
	}
}

// NoInput adapts a handler that ignores its input.
func NoInput[Out any](fn func(context.Context) (Out, error)) Handler {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		return fn(ctx)
	}
}
