// Package override implements the OverrideResolver described in spec.md
// §4.3: a uniform callable abstraction over literals, functions, bound
// methods, and dotted-path references, resolved with a fixed precedence.
//
// The source language accepts handler values as callables or
// "dotted-import" strings resolved via runtime reflection on the module
// search path. Per the Design Notes' re-architecture, handlers are encoded
// here as a tagged sum (handlerKind) and dotted references resolve through
// an explicit internal/registry.Registry instead of mutating any process
// search path.
package override

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/autonomous-bits/binprovider/internal/registry"
)

// HandlerType names one of the four per-(provider, binary) operations.
type HandlerType string

const (
	Abspath  HandlerType = "abspath"
	Version  HandlerType = "version"
	Packages HandlerType = "packages"
	Install  HandlerType = "install"
)

// Context is passed to a resolved Callable.
type Context struct {
	BinaryName string
	Abspath    string // already-resolved abspath, when known (version/sha handlers)
	Extra      map[string]any
}

// Callable is the uniform handler shape every resolved Handler is reduced
// to. It is called with (binaryName, **context) per spec §4.3; argless
// handlers simply ignore ctx.
type Callable func(ctx Context) (any, error)

// ErrNoHandler is returned when no level (binary override, provider
// wildcard, subclass default) produced a value.
var ErrNoHandler = errors.New("override: no handler")

type handlerKind int

const (
	kindLiteral handlerKind = iota
	kindFunc
	kindMethod
	kindDotted
)

// Handler is a tagged-sum handler value: a direct callable, a bound-method
// reference ("self.method_name"), a dotted registry reference, or a
// literal value of the handler's return type.
type Handler struct {
	kind    handlerKind
	literal any
	fn      any
	method  string
	dotted  string
}

// Literal wraps a plain value (e.g. a fixed SemVer, a fixed path) as a
// Handler that always returns it.
func Literal(v any) Handler { return Handler{kind: kindLiteral, literal: v} }

// Func wraps a callable. fn may be a Callable, a func(Context) (any, error),
// or an "unbound" func(provider any, ctx Context) (any, error) — the latter
// receives the provider instance as its first argument when resolved.
func Func(fn any) Handler { return Handler{kind: kindFunc, fn: fn} }

// Method references an exported method on the provider instance by name,
// encoded the way the source language encodes "self.method_name". The
// method must have the signature func(Context) (any, error).
func Method(name string) Handler { return Handler{kind: kindMethod, method: name} }

// Dotted references a callable registered in a registry.Registry under the
// given dotted path, resolved at call time rather than via import machinery.
func Dotted(path string) Handler { return Handler{kind: kindDotted, dotted: path} }

// IsZero reports whether h is the zero Handler (i.e. "not set").
func (h Handler) IsZero() bool { return h == Handler{} }

// String renders h to its spec.md §6 serialization form: a literal renders
// as its value, a method/dotted reference as the reference itself, a bare
// func as its handler kind name (funcs have no stable string identity).
func (h Handler) String() string {
	switch h.kind {
	case kindLiteral:
		return fmt.Sprintf("%v", h.literal)
	case kindMethod:
		return "self." + h.method
	case kindDotted:
		return h.dotted
	case kindFunc:
		return "<func>"
	default:
		return ""
	}
}

// Input bundles the three precedence levels (per spec §4.3: per-binary
// explicit override, provider wildcard, subclass default) plus the
// dependencies needed to resolve Method/Dotted handlers.
type Input struct {
	BinaryOverride   *Handler
	WildcardOverride *Handler
	Default          *Handler
	Provider         any
	Registry         *registry.Registry
}

// Resolve applies the fixed precedence order and returns a uniform
// Callable, or ErrNoHandler if no level produced a resolvable value.
func Resolve(in Input) (Callable, error) {
	for _, h := range []*Handler{in.BinaryOverride, in.WildcardOverride, in.Default} {
		if h == nil || h.IsZero() {
			continue
		}
		c, err := toCallable(*h, in.Provider, in.Registry)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, ErrNoHandler
}

func toCallable(h Handler, provider any, reg *registry.Registry) (Callable, error) {
	switch h.kind {
	case kindLiteral:
		v := h.literal
		return func(Context) (any, error) { return v, nil }, nil

	case kindFunc:
		return adaptFunc(h.fn, provider)

	case kindMethod:
		return methodCallable(provider, h.method)

	case kindDotted:
		if reg == nil {
			return nil, fmt.Errorf("override: dotted handler %q but no registry configured", h.dotted)
		}
		fn, ok := reg.Lookup(h.dotted)
		if !ok {
			return nil, fmt.Errorf("override: dotted handler %q not registered", h.dotted)
		}
		return adaptFunc(fn, provider)

	default:
		return nil, fmt.Errorf("override: unknown handler kind %d", h.kind)
	}
}

func adaptFunc(fn any, provider any) (Callable, error) {
	switch f := fn.(type) {
	case Callable:
		return f, nil
	case func(Context) (any, error):
		return f, nil
	case func(any) (any, error):
		// Single untyped-argument closure: it receives the Context as its argument.
		return func(ctx Context) (any, error) { return f(ctx) }, nil
	case func(any, Context) (any, error):
		// Unbound function: provider is passed explicitly as first arg.
		return func(ctx Context) (any, error) { return f(provider, ctx) }, nil
	default:
		return nil, fmt.Errorf("override: unsupported handler func type %T", fn)
	}
}

// methodCallable resolves a "self.method_name"-style reference via
// reflection on the provider instance. The method must be exported and
// have the signature func(Context) (any, error).
func methodCallable(provider any, name string) (Callable, error) {
	if provider == nil {
		return nil, fmt.Errorf("override: method handler %q but no provider instance", name)
	}
	v := reflect.ValueOf(provider)
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("override: provider %T has no method %q", provider, name)
	}
	return func(ctx Context) (any, error) {
		out := m.Call([]reflect.Value{reflect.ValueOf(ctx)})
		if len(out) != 2 {
			return nil, fmt.Errorf("override: method %q does not return (any, error)", name)
		}
		var err error
		if e, ok := out[1].Interface().(error); ok {
			err = e
		}
		return out[0].Interface(), err
	}, nil
}
