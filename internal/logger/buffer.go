package logger

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogBuffer keeps the newest log entries in a fixed-size ring so a TUI can
// show them without reading the log file back.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries uint64
}

// NewLogBuffer creates a buffer holding at most maxSize entries.
func NewLogBuffer(maxSize int) *LogBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Add adds a new log entry, overwriting the oldest one when full.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.ringBuffer[lb.currentIndex] = LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++
}

// Write accepts one JSON encoded zap entry per call, so the buffer can sit
// behind a zapcore JSON encoder.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(p, &raw); err != nil {
		lb.Add("info", strings.TrimSpace(string(p)), nil)
		return len(p), nil
	}

	level, _ := raw["level"].(string)
	msg, _ := raw["msg"].(string)
	delete(raw, "level")
	delete(raw, "msg")
	delete(raw, "time")
	if len(raw) == 0 {
		raw = nil
	}
	lb.Add(level, msg, raw)
	return len(p), nil
}

// GetRecentLogs returns up to limit of the newest entries, oldest first.
// A non-positive limit returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// Last returns the newest entry whose level is one of levels.
func (lb *LogBuffer) Last(levels ...string) (LogEntry, bool) {
	entries := lb.GetRecentLogs(0)
	for i := len(entries) - 1; i >= 0; i-- {
		for _, level := range levels {
			if strings.EqualFold(entries[i].Level, level) {
				return entries[i], true
			}
		}
	}
	return LogEntry{}, false
}

// GetStats returns the number of entries ever added.
func (lb *LogBuffer) GetStats() uint64 {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries
}
