package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/facade"
	"github.com/relex/logpipe/format"
	"github.com/relex/logpipe/pipeline"
	"github.com/relex/logpipe/run"
	"github.com/relex/logpipe/sink"
)

type benchmarkCommandState struct {
	Records   int    `help:"Total numbers of records to push"`
	Producers int    `help:"Numbers of concurrent producer goroutines"`
	Output    string `help:"Output override:\n'': (empty) write to sinks as configured\n'null': collect in memory and verify ordering"`
	Config    string `help:"Configuration file path"`
}

var benchCmd = benchmarkCommandState{
	Records:   1000000,
	Producers: 4,
	Output:    "null",
	Config:    "testdata/config_sample.yml",
}

func (cmd *benchmarkCommandState) run(_ []string) {
	if cmd.Producers <= 0 || cmd.Records <= 0 {
		logger.Fatalf("invalid benchmark parameters: records=%d producers=%d", cmd.Records, cmd.Producers)
	}
	loader, loaderErr := run.NewLoaderFromConfigFile(cmd.Config, "logpipe_benchmark_")
	if loaderErr != nil {
		logger.Fatal(loaderErr)
	}

	var pipe *pipeline.Pipeline
	var memorySink *sink.MemorySink
	closeSinks := func() {}
	if cmd.Output == "null" {
		memorySink = sink.NewMemorySink()
		p, perr := loader.StartPipelineWithSinks(logger.Root(), []base.Sink{memorySink})
		if perr != nil {
			logger.Fatal(perr)
		}
		pipe = p
	} else {
		p, sinks, perr := loader.StartPipeline(logger.Root())
		if perr != nil {
			logger.Fatal(perr)
		}
		pipe = p
		closeSinks = func() {
			for _, s := range sinks {
				s.Close()
			}
		}
	}

	numPerProducer := cmd.Records / cmd.Producers
	total := numPerProducer * cmd.Producers
	logger.Infof("pushing %d records from %d producers", total, cmd.Producers)

	startTime := time.Now()
	producerWaiter := &sync.WaitGroup{}
	producerWaiter.Add(cmd.Producers)
	for p := 0; p < cmd.Producers; p++ {
		go func(producerNum int) {
			defer producerWaiter.Done()
			tag := facade.GoroutineTag()
			for i := 0; i < numPerProducer; i++ {
				pipe.Push(&base.Record{
					Level:     base.LevelInfo,
					Timestamp: time.Now().Unix(),
					ThreadTag: tag,
					Logger:    "benchmark",
					File:      "benchmark.go",
					Line:      1,
					Payload:   fmt.Sprintf("record %d from producer %d", i, producerNum),
				})
			}
		}(p)
	}
	producerWaiter.Wait()
	pushDuration := time.Since(startTime)

	pipe.Stop()
	totalDuration := time.Since(startTime)
	closeSinks()

	logger.Infof("pushed %d records in %s (%.0f records/sec)", total, pushDuration,
		float64(total)/pushDuration.Seconds())
	logger.Infof("drained in %s (%.0f records/sec end to end)", totalDuration,
		float64(total)/totalDuration.Seconds())

	if written := pipe.NextSeqToWrite(); written != uint64(total) {
		logger.Fatalf("record loss: %d written out of %d", written, total)
	}
	if memorySink != nil {
		verifyOrdering(memorySink, total)
	}
}

func verifyOrdering(memorySink *sink.MemorySink, total int) {
	lines := format.SplitLines(memorySink.Bytes())
	if len(lines) != total {
		logger.Fatalf("output mismatch: %d lines out of %d records", len(lines), total)
	}
	lastSeen := make(map[int]int)
	for _, line := range lines {
		parsed, err := format.ParseLine(line)
		if err != nil {
			logger.Fatalf("malformed output: %s", err.Error())
		}
		var ordinal, producerNum int
		if _, serr := fmt.Sscanf(parsed.Payload, "record %d from producer %d", &ordinal, &producerNum); serr != nil {
			logger.Fatalf("unexpected payload %q: %s", parsed.Payload, serr.Error())
		}
		if last, ok := lastSeen[producerNum]; ok && ordinal <= last {
			logger.Fatalf("reordered output: record %d from producer %d after record %d", ordinal, producerNum, last)
		}
		lastSeen[producerNum] = ordinal
	}
	logger.Infof("verified %d output lines", total)
}
