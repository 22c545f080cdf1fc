// Package web holds the embedded page templates, chart templates and static
// assets served by the HTTP layer.
package web

import "embed"

// TemplatesFS embeds the page (*.html) and chart (*.svg) templates.
//
//go:embed templates/*
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js/images).
//
//go:embed static/*
var StaticFS embed.FS
