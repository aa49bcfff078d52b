package main

import (
	"os"

	"github.com/mchave3/Intune-Group-Assignments/internal/cli"
	"github.com/mchave3/Intune-Group-Assignments/internal/debug"
	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
)

// Version is set at build time using ldflags
var Version = "dev"

// Commit is set at build time using ldflags
var Commit = "unknown"

// Date is set at build time using ldflags
var Date = "unknown"

// BuiltBy is set at build time using ldflags
var BuiltBy = "unknown"

func main() {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		BuiltBy: BuiltBy,
	})

	err := rootCmd.Execute()
	debug.Close()
	if err != nil {
		os.Exit(upgrade.ExitCode(err))
	}
}
