// Package template defines the engine seam report renderers compile their
// templates through. The gotemplate subpackage provides the text/template
// backed implementation.
package template
