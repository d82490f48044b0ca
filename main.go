// Package main provides the entry point for the SNX client, a GTK4 and
// terminal front-end for the SNX tunnel service.
//
// Usage:
//
//	snx-gui [command] [flags]
//
// Without a command the desktop window is opened. See "snx-gui --help"
// for the terminal interface and the scripting commands.
package main

import "github.com/yllada/snx-gui/cli"

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
)

func main() {
	cli.SetVersionInfo(appVersion, buildTime)
	cli.Execute()
}
