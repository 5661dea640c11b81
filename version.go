package convo

import _ "embed"

// Version is the convo release version, embedded from the VERSION file.
// It carries a trailing newline; trim before display.
//
//go:embed VERSION
var Version string
