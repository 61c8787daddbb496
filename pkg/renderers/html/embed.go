package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/partials/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	// ReportTemplate is the logical location of the report page.
	ReportTemplate = "templates/html-report"
	// IndexTemplate is the logical location of the index page.
	IndexTemplate = "templates/html-index"
	// PartialsPattern selects the partials parsed into both pages.
	PartialsPattern = "templates/partials/*.tmpl"

	StylesheetName = "lsd-report.css"
)

// TemplatesFS exposes the embedded template bundle so callers can copy it as
// a starting point for their own templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet bundle.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
