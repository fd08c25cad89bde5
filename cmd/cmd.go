// Package cmd provides the list of commands of the logpipe executable
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "logpipe writes ordered logs to rolling files, stdout and backup receivers", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("run ...", "Pipe stdin through a configured pipeline", &runCmd, runCmd.run)
	config.AddCmdWithArgs("benchmark ...", "Benchmark the pipeline with generated records", &benchCmd, benchCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	config.Execute()
}
