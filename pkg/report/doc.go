// Package report holds the data model rendered by the report renderers: a
// report made of scenarios, each scenario made of steps and facts.
//
// Reports are produced upstream (by the capture recorder or by importing
// cucumber JSON) and are read-only for renderers. Some values are exposed as
// plain fields, some through accessors and some are computed by zero-argument
// methods; the renderer's binding layer resolves all three.
package report
