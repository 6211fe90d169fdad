// Package main provides the entry point for the vartab CLI tool.
package main

import (
	"github.com/alulab/vartab/cmd/vartab/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
