// Package assets embeds the web page served at the site root.
package assets

import _ "embed"

// Index is the page built by cmd/minify from index.html.tpl, style.css, script.js and pin.svg.
//
//go:embed index.html
var Index []byte

// Favicon is served at /favicon.ico.
//
//go:embed favicon.svg
var Favicon []byte
