package binding

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

var (
	// ErrUnresolvable reports a name no resolver in the chain could read.
	ErrUnresolvable = errors.New("binding: unresolvable name")
	// ErrCycle reports a node that (indirectly) contains itself.
	ErrCycle = errors.New("binding: cycle detected")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FieldResolver reads named values from a node.
type FieldResolver interface {
	// Names lists every name the resolver can read from v.
	Names(v reflect.Value) []string
	// Resolve reads name from v. ok is false when the resolver does not know
	// the name; err is set when it does but reading failed.
	Resolve(v reflect.Value, name string) (value any, ok bool, err error)
}

// Chain is an ordered list of resolvers; the first successful one wins.
type Chain []FieldResolver

// DefaultChain returns mapping, accessor, field and method resolvers, in that
// order.
func DefaultChain() Chain {
	return Chain{MapResolver{}, AccessorResolver{}, StructFieldResolver{}, MethodResolver{}}
}

// Resolve reads a single name from target, returning ErrUnresolvable when no
// resolver knows it.
func (c Chain) Resolve(target any, name string) (any, error) {
	value, ok, err := c.resolve(indirectInterface(reflect.ValueOf(target)), name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolvable, name)
	}
	return value, nil
}

func (c Chain) resolve(v reflect.Value, name string) (any, bool, error) {
	for _, resolver := range c {
		if resolver == nil {
			continue
		}
		value, ok, err := resolver.Resolve(v, name)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return value, true, nil
		}
	}
	return nil, false, nil
}

func (c Chain) names(v reflect.Value) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, resolver := range c {
		if resolver == nil {
			continue
		}
		for _, name := range resolver.Names(v) {
			if _, exists := seen[name]; exists {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// MapResolver reads entries of map nodes. String keys are used as-is, other
// key types by their fmt representation.
type MapResolver struct{}

// Names implements FieldResolver.
func (MapResolver) Names(v reflect.Value) []string {
	v = indirect(v)
	if v.Kind() != reflect.Map || v.IsNil() {
		return nil
	}
	names := make([]string, 0, v.Len())
	for _, key := range v.MapKeys() {
		names = append(names, mapKeyName(key))
	}
	sort.Strings(names)
	return names
}

// Resolve implements FieldResolver.
func (MapResolver) Resolve(v reflect.Value, name string) (any, bool, error) {
	v = indirect(v)
	if v.Kind() != reflect.Map || v.IsNil() {
		return nil, false, nil
	}
	if v.Type().Key().Kind() == reflect.String {
		value := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !value.IsValid() {
			return nil, false, nil
		}
		return value.Interface(), true, nil
	}
	iter := v.MapRange()
	for iter.Next() {
		if mapKeyName(iter.Key()) == name {
			return iter.Value().Interface(), true, nil
		}
	}
	return nil, false, nil
}

func mapKeyName(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	return fmt.Sprint(key.Interface())
}

// AccessorResolver reads bean-style accessors: GetTitle() is exposed as
// "title" and IsDone() (returning bool) as "done".
type AccessorResolver struct{}

// Names implements FieldResolver.
func (AccessorResolver) Names(v reflect.Value) []string {
	recv := methodReceiver(v)
	if !recv.IsValid() {
		return nil
	}
	var names []string
	for i := 0; i < recv.NumMethod(); i++ {
		if name, ok := accessorName(recv.Type().Method(i)); ok {
			names = append(names, name)
		}
	}
	return names
}

// Resolve implements FieldResolver.
func (AccessorResolver) Resolve(v reflect.Value, name string) (any, bool, error) {
	recv := methodReceiver(v)
	if !recv.IsValid() {
		return nil, false, nil
	}
	for i := 0; i < recv.NumMethod(); i++ {
		if candidate, ok := accessorName(recv.Type().Method(i)); ok && candidate == name {
			return call(recv.Method(i))
		}
	}
	return nil, false, nil
}

func accessorName(method reflect.Method) (string, bool) {
	if !isNiladic(method) {
		return "", false
	}
	for _, prefix := range []string{"Get", "Is"} {
		rest, found := strings.CutPrefix(method.Name, prefix)
		if !found || rest == "" || !unicode.IsUpper([]rune(rest)[0]) {
			continue
		}
		if prefix == "Is" && method.Type.Out(0).Kind() != reflect.Bool {
			continue
		}
		return TemplateName(rest), true
	}
	return "", false
}

// StructFieldResolver reads exported struct fields, named by their JSON tag
// when present and by the lowerCamel field name otherwise.
type StructFieldResolver struct{}

// Names implements FieldResolver.
func (StructFieldResolver) Names(v reflect.Value) []string {
	v = indirect(v)
	if v.Kind() != reflect.Struct {
		return nil
	}
	var names []string
	for _, field := range structFields(v.Type()) {
		names = append(names, field.name)
	}
	return names
}

// Resolve implements FieldResolver.
func (StructFieldResolver) Resolve(v reflect.Value, name string) (any, bool, error) {
	v = indirect(v)
	if v.Kind() != reflect.Struct {
		return nil, false, nil
	}
	for _, field := range structFields(v.Type()) {
		if field.name != name {
			continue
		}
		value, err := v.FieldByIndexErr(field.index)
		if err != nil || !value.CanInterface() {
			// nil embedded pointer or a field promoted through an unexported
			// embedding; neither is readable on this value
			return nil, false, nil
		}
		return value.Interface(), true, nil
	}
	return nil, false, nil
}

type namedField struct {
	name  string
	index []int
}

func structFields(t reflect.Type) []namedField {
	var out []namedField
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && indirectType(field.Type).Kind() == reflect.Struct {
			continue
		}
		name := TemplateName(field.Name)
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out = append(out, namedField{name: name, index: field.Index})
	}
	return out
}

// MethodResolver calls exported zero-argument methods, named in lowerCamel.
// A trailing error result is returned as a resolution error.
type MethodResolver struct{}

// skippedMethods are codec hooks that must not be invoked while binding.
var skippedMethods = map[string]struct{}{
	"MarshalJSON":   {},
	"MarshalText":   {},
	"MarshalYAML":   {},
	"MarshalBinary": {},
	"GoString":      {},
	"Error":         {},
}

// Names implements FieldResolver.
func (MethodResolver) Names(v reflect.Value) []string {
	recv := methodReceiver(v)
	if !recv.IsValid() {
		return nil
	}
	var names []string
	for i := 0; i < recv.NumMethod(); i++ {
		method := recv.Type().Method(i)
		if !isCallableMethod(method) {
			continue
		}
		names = append(names, TemplateName(method.Name))
	}
	return names
}

// Resolve implements FieldResolver.
func (MethodResolver) Resolve(v reflect.Value, name string) (any, bool, error) {
	recv := methodReceiver(v)
	if !recv.IsValid() {
		return nil, false, nil
	}
	for i := 0; i < recv.NumMethod(); i++ {
		method := recv.Type().Method(i)
		if !isCallableMethod(method) || TemplateName(method.Name) != name {
			continue
		}
		return call(recv.Method(i))
	}
	return nil, false, nil
}

func isCallableMethod(method reflect.Method) bool {
	if _, skip := skippedMethods[method.Name]; skip {
		return false
	}
	return isNiladic(method)
}

// isNiladic reports methods taking no arguments (besides the receiver) and
// returning a value, optionally followed by an error.
func isNiladic(method reflect.Method) bool {
	mt := method.Type
	if mt.NumIn() != 1 {
		return false
	}
	switch mt.NumOut() {
	case 1:
		return mt.Out(0) != errorType
	case 2:
		return mt.Out(1) == errorType
	default:
		return false
	}
}

func call(method reflect.Value) (any, bool, error) {
	results := method.Call(nil)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, false, results[1].Interface().(error)
	}
	return results[0].Interface(), true, nil
}

// methodReceiver returns a pointer to v so both value and pointer receiver
// methods are visible. Nil pointers yield an invalid value.
func methodReceiver(v reflect.Value) reflect.Value {
	v = indirectInterface(v)
	if !v.IsValid() {
		return reflect.Value{}
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		return v
	}
	if v.CanAddr() {
		return v.Addr()
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr
}

// TemplateName converts a Go identifier into the lowerCamel name used in
// templates: Title -> title, ID -> id, HTTPStatus -> httpStatus.
func TemplateName(goName string) string {
	runes := []rune(goName)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return goName
	case upper == len(runes):
		return strings.ToLower(goName)
	case upper > 1 && unicode.IsLower(runes[upper]):
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func indirect(v reflect.Value) reflect.Value {
	v = indirectInterface(v)
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func indirectInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
