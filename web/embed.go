package web

import "embed"

// Content holds the embedded landing page served at /.
//
//go:embed index.html
var Content embed.FS
