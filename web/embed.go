// Package web embeds the dashboard templates and browser assets.
package web

import "embed"

// TemplatesFS holds the dashboard page and its HTMX fragments.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the Chart.js bootstrap script.
//
//go:embed static/*
var StaticFS embed.FS
