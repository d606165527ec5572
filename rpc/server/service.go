package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ValentinKolb/gaea/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// Handler implements a remote method. The returned value becomes the result of
// the call, out parameters are added with Call.AddOut.
type Handler func(call *Call) (any, error)

// MethodDef describes one remote method. Methods are matched by name (case
// insensitive) and parameter count, so overloads differ in Arity.
type MethodDef struct {
	Name    string
	Arity   int
	Handler Handler
}

// Call gives a handler access to the current call
type Call struct {
	rc     *RequestContext
	params []any
}

// Context returns the call context, it ends with the call deadline
func (c *Call) Context() context.Context { return c.rc.Context() }

// Params returns the positional parameters as decoded from the wire
func (c *Call) Params() []any { return c.params }

// Param returns parameter i
func (c *Call) Param(i int) any { return c.params[i] }

// AddOut appends an out parameter to the response
func (c *Call) AddOut(v any) { c.rc.OutPara = append(c.rc.OutPara, v) }

// RequestContext returns the pipeline state of the call
func (c *Call) RequestContext() *RequestContext { return c.rc }

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

type methodKey struct {
	name  string
	arity int
}

// Service is a named group of methods, addressed by its lookup key
type Service struct {
	lookup  string
	methods *xsync.MapOf[methodKey, MethodDef]
}

// NewService creates an empty service with the given lookup key
func NewService(lookup string) *Service {
	return &Service{lookup: lookup, methods: xsync.NewMapOf[methodKey, MethodDef]()}
}

// Lookup returns the key the service is registered under
func (s *Service) Lookup() string { return s.lookup }

// Handle adds methods to the service. It panics on a duplicate name and arity,
// like http.ServeMux does for duplicate patterns.
func (s *Service) Handle(defs ...MethodDef) *Service {
	for _, def := range defs {
		if def.Handler == nil || def.Arity < 0 {
			panic(fmt.Sprintf("server: invalid method %s.%s", s.lookup, def.Name))
		}
		key := methodKey{name: strings.ToLower(def.Name), arity: def.Arity}
		if _, loaded := s.methods.LoadOrStore(key, def); loaded {
			panic(fmt.Sprintf("server: method %s.%s/%d registered twice", s.lookup, def.Name, def.Arity))
		}
	}
	return s
}

// Method finds a method by case-insensitive name and parameter count
func (s *Service) Method(name string, arity int) (MethodDef, bool) {
	return s.methods.Load(methodKey{name: strings.ToLower(name), arity: arity})
}

// Methods returns the method signatures sorted by name and arity
func (s *Service) Methods() []string {
	var defs []MethodDef
	s.methods.Range(func(_ methodKey, def MethodDef) bool {
		defs = append(defs, def)
		return true
	})
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Name != defs[j].Name {
			return defs[i].Name < defs[j].Name
		}
		return defs[i].Arity < defs[j].Arity
	})
	out := make([]string, len(defs))
	for i, def := range defs {
		out[i] = fmt.Sprintf("%s/%d", def.Name, def.Arity)
	}
	return out
}

// --------------------------------------------------------------------------
// Service table
// --------------------------------------------------------------------------

// Services is the table of registered services, safe for concurrent use
type Services struct {
	table *xsync.MapOf[string, *Service]
}

// NewServices creates an empty service table
func NewServices() *Services {
	return &Services{table: xsync.NewMapOf[string, *Service]()}
}

// Register adds services to the table. A lookup key may only be used once.
func (s *Services) Register(services ...*Service) error {
	for _, svc := range services {
		if _, loaded := s.table.LoadOrStore(svc.lookup, svc); loaded {
			return fmt.Errorf("service %s already registered", svc.lookup)
		}
		Logger.Infof("Registered service %s with methods %v", svc.lookup, svc.Methods())
	}
	return nil
}

// Get returns the service registered under lookup
func (s *Services) Get(lookup string) (*Service, bool) {
	return s.table.Load(lookup)
}

// Names returns the sorted lookup keys
func (s *Services) Names() []string {
	var names []string
	s.table.Range(func(name string, _ *Service) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// resolve finds the method for the call or returns the matching remote error
func (s *Services) resolve(rc *RequestContext) (MethodDef, *common.RemoteError) {
	svc, ok := s.Get(rc.Lookup)
	if !ok {
		return MethodDef{}, common.NewRemoteError(common.ErrKindNotFoundService, "service %s not found", rc.Lookup)
	}
	def, ok := svc.Method(rc.Method, len(rc.Params))
	if !ok {
		return MethodDef{}, common.NewRemoteError(common.ErrKindNotFoundMethod,
			"method %s with %d parameters not found in %s", rc.Method, len(rc.Params), rc.Lookup)
	}
	return def, nil
}

// --------------------------------------------------------------------------
// Typed method helpers
// --------------------------------------------------------------------------

// Method defines a method with a raw handler
func Method(name string, arity int, h Handler) MethodDef {
	return MethodDef{Name: name, Arity: arity, Handler: h}
}

// Method0 defines a method without parameters
func Method0[R any](name string, fn func(ctx context.Context) (R, error)) MethodDef {
	return Method(name, 0, func(c *Call) (any, error) {
		return fn(c.Context())
	})
}

// Method1 defines a method with one parameter converted to A
func Method1[A, R any](name string, fn func(ctx context.Context, a A) (R, error)) MethodDef {
	return Method(name, 1, func(c *Call) (any, error) {
		a, err := param[A](c, 0)
		if err != nil {
			return nil, err
		}
		return fn(c.Context(), a)
	})
}

// Method2 defines a method with two parameters
func Method2[A, B, R any](name string, fn func(ctx context.Context, a A, b B) (R, error)) MethodDef {
	return Method(name, 2, func(c *Call) (any, error) {
		a, err := param[A](c, 0)
		if err != nil {
			return nil, err
		}
		b, err := param[B](c, 1)
		if err != nil {
			return nil, err
		}
		return fn(c.Context(), a, b)
	})
}

// Method3 defines a method with three parameters
func Method3[A, B, C, R any](name string, fn func(ctx context.Context, a A, b B, c C) (R, error)) MethodDef {
	return Method(name, 3, func(call *Call) (any, error) {
		a, err := param[A](call, 0)
		if err != nil {
			return nil, err
		}
		b, err := param[B](call, 1)
		if err != nil {
			return nil, err
		}
		c, err := param[C](call, 2)
		if err != nil {
			return nil, err
		}
		return fn(call.Context(), a, b, c)
	})
}

func param[T any](c *Call, i int) (T, error) {
	v, err := Convert[T](c.params[i])
	if err != nil {
		var zero T
		return zero, common.NewRemoteError(common.ErrKindParameterConversion, "parameter %d: %v", i, err)
	}
	return v, nil
}
