// Package version carries the launcher build version, overridden at build
// time with -ldflags.
package version

var Version = "dev"
