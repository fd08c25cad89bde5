package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/klauspost/compress/gzip"
	"github.com/relex/gotils/logger"
	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/defs"
)

// FileSink writes batches to a log file rolled by size and/or age
//
// Rotated files are renamed to "<path>.<timestamp>" and optionally gzip-compressed in
// background. Write is only ever called by the reorder writer, so no locking around the
// current file is needed; Close waits for pending compressions.
type FileSink struct {
	logger         logger.Logger
	path           string
	maxSize        uint64        // 0 = no size-based rotation
	rotateInterval time.Duration // 0 = no age-based rotation
	compress       bool
	fd             *os.File
	writtenBytes   uint64
	openTime       time.Time
	compressions   sync.WaitGroup
}

// NewFileSink creates a FileSink and opens the target file, creating directories as needed
func NewFileSink(parentLogger logger.Logger, cfg *FileSinkConfig) (*FileSink, error) {
	if err := cfg.VerifyConfig(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	sink := &FileSink{
		logger:         parentLogger.WithField(defs.LabelComponent, "FileSink").WithField(defs.LabelName, cfg.Path),
		path:           cfg.Path,
		maxSize:        cfg.MaxSize.Bytes(),
		rotateInterval: time.Duration(cfg.RotateHours) * time.Hour,
		compress:       cfg.Compress,
	}
	if err := sink.openFile(); err != nil {
		return nil, err
	}
	return sink, nil
}

// Write appends one batch, rotating the file first if size or age limits are exceeded
func (sink *FileSink) Write(batch []byte) error {
	if sink.shouldRotate(len(batch)) {
		if err := sink.rotate(); err != nil {
			sink.logger.Errorf("rotation failed, continuing with current file: %s", err.Error())
		}
	}
	n, werr := sink.fd.Write(batch)
	sink.writtenBytes += uint64(n)
	return werr
}

// Close closes the current file and waits for background compressions to finish
func (sink *FileSink) Close() error {
	err := sink.fd.Close()
	sink.compressions.Wait()
	return err
}

func (sink *FileSink) openFile() error {
	fd, oerr := os.OpenFile(sink.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if oerr != nil {
		return fmt.Errorf("failed to open log file: %w", oerr)
	}
	info, serr := fd.Stat()
	if serr != nil {
		fd.Close()
		return fmt.Errorf("failed to stat log file: %w", serr)
	}
	sink.fd = fd
	sink.writtenBytes = uint64(info.Size())
	sink.openTime = time.Now()
	return nil
}

func (sink *FileSink) shouldRotate(incoming int) bool {
	if sink.maxSize > 0 && sink.writtenBytes > 0 && sink.writtenBytes+uint64(incoming) > sink.maxSize {
		return true
	}
	if sink.rotateInterval > 0 && time.Since(sink.openTime) >= sink.rotateInterval {
		return true
	}
	return false
}

func (sink *FileSink) rotate() error {
	if err := sink.fd.Close(); err != nil {
		return err
	}
	rotatedPath := sink.nextRotatedPath()
	if err := os.Rename(sink.path, rotatedPath); err != nil {
		// reopen whatever is there so logging continues
		if oerr := sink.openFile(); oerr != nil {
			return oerr
		}
		return err
	}
	if err := sink.openFile(); err != nil {
		return err
	}
	sink.logger.Infof("rotated to %s", rotatedPath)
	if sink.compress {
		sink.compressions.Add(1)
		go sink.compressRotated(rotatedPath)
	}
	return nil
}

func (sink *FileSink) nextRotatedPath() string {
	stem := sink.path + "." + time.Now().Format("20060102-150405")
	candidate := stem
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", stem, i)
	}
}

// compressRotated gzips one rotated file and removes the original
func (sink *FileSink) compressRotated(rotatedPath string) {
	defer sink.compressions.Done()
	source, oerr := os.Open(rotatedPath)
	if oerr != nil {
		sink.logger.Warnf("failed to open rotated file: %s", oerr.Error())
		return
	}
	defer source.Close()
	target, cerr := os.Create(rotatedPath + ".gz")
	if cerr != nil {
		sink.logger.Warnf("failed to create compressed file: %s", cerr.Error())
		return
	}
	zipper := gzip.NewWriter(target)
	if _, err := io.Copy(zipper, source); err != nil {
		sink.logger.Warnf("failed to compress %s: %s", rotatedPath, err.Error())
		zipper.Close()
		target.Close()
		return
	}
	if err := zipper.Close(); err != nil {
		sink.logger.Warnf("failed to finish compression: %s", err.Error())
		target.Close()
		return
	}
	if err := target.Close(); err != nil {
		sink.logger.Warnf("failed to close compressed file: %s", err.Error())
		return
	}
	if err := os.Remove(rotatedPath); err != nil {
		sink.logger.Warnf("failed to remove %s: %s", rotatedPath, err.Error())
	}
}

// FileSinkConfig defines the configuration of FileSink
type FileSinkConfig struct {
	Header      `yaml:",inline"`
	Path        string            `yaml:"path"`
	MaxSize     datasize.ByteSize `yaml:"maxSize"`     // rotate when the file would exceed this size, 0 to disable
	RotateHours int               `yaml:"rotateHours"` // rotate when the file is older than this, 0 to disable
	Compress    bool              `yaml:"compress"`    // gzip rotated files in background
}

// NewSink creates a FileSink
func (cfg *FileSinkConfig) NewSink(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.Sink, error) {
	return NewFileSink(parentLogger, cfg)
}

// VerifyConfig verifies the configuration
func (cfg *FileSinkConfig) VerifyConfig() error {
	if len(cfg.Path) == 0 {
		return fmt.Errorf(".path is unspecified")
	}
	if cfg.RotateHours < 0 {
		return fmt.Errorf(".rotateHours cannot be negative: %d", cfg.RotateHours)
	}
	return nil
}
