package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SafeFileWriter is a buffered, mutex guarded file sink that flushes on a
// ticker and on Close.
type SafeFileWriter struct {
	mu     sync.Mutex
	writer *bufio.Writer
	file   *os.File
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once

	writtenLines uint64
}

// NewSafeFileWriter opens filePath for appending, creating its directory.
func NewSafeFileWriter(filePath string, flushInterval time.Duration) (*SafeFileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	sfw := &SafeFileWriter{
		writer: bufio.NewWriter(file),
		file:   file,
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
	}
	go sfw.periodicFlush()

	return sfw, nil
}

func (sfw *SafeFileWriter) Write(data []byte) (int, error) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	n, err := sfw.writer.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}
	sfw.writtenLines++
	return n, nil
}

// Sync flushes buffered data to disk.
func (sfw *SafeFileWriter) Sync() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return sfw.file.Sync()
}

func (sfw *SafeFileWriter) periodicFlush() {
	for {
		select {
		case <-sfw.ticker.C:
			_ = sfw.Sync()
		case <-sfw.done:
			return
		}
	}
}

// Close stops the flush loop and closes the file. It is safe to call twice.
func (sfw *SafeFileWriter) Close() error {
	var err error
	sfw.once.Do(func() {
		close(sfw.done)
		sfw.ticker.Stop()

		sfw.mu.Lock()
		defer sfw.mu.Unlock()
		if ferr := sfw.writer.Flush(); ferr != nil {
			err = fmt.Errorf("failed to flush on close: %w", ferr)
		}
		if cerr := sfw.file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	})
	return err
}

// Lines returns the number of writes accepted so far.
func (sfw *SafeFileWriter) Lines() uint64 {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.writtenLines
}

// NewTUILogger creates a logger that never touches the terminal: JSON lines go
// to the file at path and, when buffer is non-nil, to the in-memory ring.
// The returned closer flushes and closes the file.
func NewTUILogger(path string, debug bool, buffer *LogBuffer) (*zap.Logger, func() error, error) {
	sink, err := NewSafeFileWriter(path, time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	level := levelFor(debug)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level),
	}
	if buffer != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(buffer), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closer := func() error {
		_ = logger.Sync()
		return sink.Close()
	}
	return logger, closer, nil
}
