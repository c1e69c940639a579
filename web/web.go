// Package web embeds the HTML templates served by the site.
package web

import "embed"

//go:embed templates
var Templates embed.FS
