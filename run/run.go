package run

import (
	"bufio"
	"os"
	"os/signal"
	"syscall"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
	"github.com/relex/logpipe/facade"
)

// Run pipes standard input through a configured pipeline until EOF or termination signal
//
// Each input line becomes one INFO record of the logger named "stdin"; this makes a
// configured sink set (rolling file, stdout, backup) usable from shell pipelines.
func Run(configFile string) {
	loader, loaderErr := NewLoaderFromConfigFile(configFile, "logpipe_")
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	pipe, sinks, startErr := loader.StartPipeline(logger.Root())
	if startErr != nil {
		logger.Fatal(startErr)
	}
	runLogger := logger.WithField(defs.LabelComponent, "Launcher")
	stdinLogger := facade.NewAsyncLogger("stdin", base.LevelDebug, pipe)

	endOfInput := make(chan struct{})
	go func() {
		defer close(endOfInput)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			stdinLogger.Infof("%s", scanner.Text())
		}
	}()

	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT)
	signal.Notify(sigChan, syscall.SIGTERM)
	select {
	case s := <-sigChan:
		runLogger.Infof("received %s, shutting down", s)
	case <-endOfInput:
		runLogger.Info("end of input, shutting down")
	}

	pipe.Stop()
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			runLogger.Warnf("failed to close sink: %s", err.Error())
		}
	}
	runLogger.Info("clean exit")
}
