package binding

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Context is the per-render binding of a value under a single root name.
// It is built once per render call and discarded afterwards.
type Context struct {
	root string
	data map[string]any
}

// Option configures a single Bind call.
type Option func(*binder)

// OnlyNames limits struct nodes to the listed names, so resolvers are never
// asked for values nobody reads (computed methods in particular). Map
// entries are always bound in full. Without this option every name the
// chain lists is bound.
func OnlyNames(names ...string) Option {
	return func(b *binder) {
		b.only = make(map[string]struct{}, len(names))
		for _, name := range names {
			b.only[name] = struct{}{}
		}
	}
}

// Bind walks value through chain and stores the result under root. Struct
// and map nodes become map[string]any, sequences become []any (in order), and
// scalars are kept as they are. The walk fails on the first resolver error or
// when a node contains itself.
func Bind(root string, value any, chain Chain, options ...Option) (*Context, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("binding: root name is required")
	}
	if len(chain) == 0 {
		chain = DefaultChain()
	}

	b := &binder{chain: chain, visiting: make(map[visitKey]struct{})}
	for _, option := range options {
		if option != nil {
			option(b)
		}
	}
	bound, err := b.bind(reflect.ValueOf(value), root)
	if err != nil {
		return nil, err
	}
	return &Context{root: root, data: map[string]any{root: bound}}, nil
}

// Root returns the name the value is bound under.
func (c *Context) Root() string {
	return c.root
}

// Data returns the template data: a map holding the bound root.
func (c *Context) Data() map[string]any {
	return c.data
}

// Lookup reads a dotted path such as "report.scenarios.0.title" from the
// bound data.
func (c *Context) Lookup(path string) (any, error) {
	var current any = c.data
	walked := make([]string, 0, 4)
	for _, part := range strings.Split(path, ".") {
		walked = append(walked, part)
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnresolvable, strings.Join(walked, "."))
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%w: %q", ErrUnresolvable, strings.Join(walked, "."))
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnresolvable, strings.Join(walked, "."))
		}
	}
	return current, nil
}

type visitKey struct {
	typ reflect.Type
	ptr uintptr
}

type binder struct {
	chain    Chain
	visiting map[visitKey]struct{}
	// only is nil when every name is bound.
	only map[string]struct{}
}

func (b *binder) bind(v reflect.Value, path string) (any, error) {
	v = indirectInterface(v)
	if !v.IsValid() {
		return nil, nil
	}
	if leaf, ok := leafValue(v); ok {
		return leaf, nil
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		if leaf, ok := leafValue(v.Elem()); ok {
			return leaf, nil
		}
		return b.bindTracked(v, path)
	case reflect.Map:
		if v.IsNil() {
			return map[string]any{}, nil
		}
		return b.bindTracked(v, path)
	case reflect.Struct:
		return b.bindNode(v, path)
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			item, err := b.bind(v.Index(i), path+"."+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	default:
		// funcs and channels pass through untouched
		return v.Interface(), nil
	}
}

func (b *binder) bindTracked(v reflect.Value, path string) (any, error) {
	key := visitKey{typ: v.Type(), ptr: v.Pointer()}
	if _, seen := b.visiting[key]; seen {
		return nil, fmt.Errorf("%w at %s", ErrCycle, path)
	}
	b.visiting[key] = struct{}{}
	defer delete(b.visiting, key)

	return b.bindNode(v, path)
}

func (b *binder) bindNode(v reflect.Value, path string) (map[string]any, error) {
	names := b.chain.names(v)
	filter := b.only != nil && indirect(v).Kind() != reflect.Map
	out := make(map[string]any, len(names))
	for _, name := range names {
		if filter {
			if _, wanted := b.only[name]; !wanted {
				continue
			}
		}
		raw, ok, err := b.chain.resolve(v, name)
		if err != nil {
			return nil, fmt.Errorf("binding: resolve %s.%s: %w", path, name, err)
		}
		if !ok {
			continue
		}
		bound, err := b.bind(reflect.ValueOf(raw), path+"."+name)
		if err != nil {
			return nil, err
		}
		out[name] = bound
	}
	return out, nil
}

// leafValue reports scalars that templates print directly.
func leafValue(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return v.Interface(), true
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes()), true
		}
	case reflect.Struct:
		if v.Type() == timeType {
			return v.Interface(), true
		}
	}
	return nil, false
}
