package cmd

import (
	"github.com/relex/logpipe/run"
)

type runCommandState struct {
	Config string `help:"Configuration file path"`
}

var runCmd = runCommandState{
	Config: "testdata/config_sample.yml",
}

func (cmd *runCommandState) run(_ []string) {
	run.Run(cmd.Config)
}
