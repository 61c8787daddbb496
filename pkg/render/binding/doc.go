// Package binding turns a report graph into the plain maps and slices a
// compiled template evaluates against.
//
// Every node is read through a chain of FieldResolvers, tried in order:
// mapping lookup, bean-style accessor (GetX/IsX), exported struct field, and
// zero-argument method. The first resolver that knows a name wins, so nodes
// can mix plain data holders with computed properties.
package binding
