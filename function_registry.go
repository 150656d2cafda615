package menu

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-menu/internal/vkey"
)

// Function is a helper callable from rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry maps case-insensitive names to rule helpers.
type FunctionRegistry struct {
	mu  sync.RWMutex
	fns map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{fns: map[string]Function{}}
}

// Register adds fn under name. A name can only be taken once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFunction)
	}
	if fn == nil {
		return fmt.Errorf("%w: %q is nil", ErrInvalidFunction, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fns == nil {
		r.fns = map[string]Function{}
	}
	if _, taken := r.fns[key]; taken {
		return fmt.Errorf("%w: %q", ErrFunctionExists, name)
	}
	r.fns[key] = fn
	return nil
}

// Clone copies the registry; later registrations on either side are not shared.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := maps.Clone(r.fns)
	if fns == nil {
		fns = map[string]Function{}
	}
	return &FunctionRegistry{fns: fns}
}

// Call runs the helper registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.fns[strings.ToLower(name)]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names lists the registered names in lower case, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.fns))
}

// withDefaults returns a copy of r that also holds the menu helpers r does not
// override.
func (r *FunctionRegistry) withDefaults() *FunctionRegistry {
	out := r.Clone()
	if out == nil {
		out = NewFunctionRegistry()
	}
	for name, fn := range menuFunctions {
		if _, taken := out.fns[name]; !taken {
			out.fns[name] = fn
		}
	}
	return out
}

// menuFunctions are available to the default engine unless the host registers
// the same name.
var menuFunctions = map[string]Function{
	// keytext(code) is the label a key bind shows for code.
	"keytext": func(args ...any) (any, error) {
		code, err := intArgs("keytext", 1, args)
		if err != nil {
			return nil, err
		}
		return vkey.KeyToText(uint32(code[0])), nil
	},
	// percent(value, min, max) is the slider position in [0, 100].
	"percent": func(args ...any) (any, error) {
		n, err := intArgs("percent", 3, args)
		if err != nil {
			return nil, err
		}
		if n[2] == n[1] {
			return 0, nil
		}
		return 100 * (n[0] - n[1]) / (n[2] - n[1]), nil
	},
	// between(value, min, max) reports min <= value <= max.
	"between": func(args ...any) (any, error) {
		n, err := intArgs("between", 3, args)
		if err != nil {
			return nil, err
		}
		return n[1] <= n[0] && n[0] <= n[2], nil
	},
}

func intArgs(name string, want int, args []any) ([]int, error) {
	if len(args) != want {
		return nil, fmt.Errorf("menu: %s expects %d arguments, got %d", name, want, len(args))
	}
	out := make([]int, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case int:
			out[i] = v
		case int64:
			out[i] = int(v)
		case uint32:
			out[i] = int(v)
		case float64:
			out[i] = int(v)
		default:
			return nil, fmt.Errorf("menu: %s argument %d is %T, want a number", name, i, arg)
		}
	}
	return out, nil
}

// WithFunctionRegistry adds registry's helpers to the default rule engine.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *managerConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithCustomFunction registers one rule helper. Invalid or duplicate names
// are logged by New and the helper is skipped.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *managerConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.functionErrs = append(cfg.functionErrs, err)
		}
	}
}
