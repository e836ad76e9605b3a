package mock

import (
	"sync"

	"github.com/tendermint/tendermint/libs/log"
)

var _ log.Logger = (*Logger)(nil)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	KeyVals []interface{}
}

// Logger records what it is given. Loggers derived with With share the
// records of their parent and prepend their key values to each entry.
type Logger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	keyVals []interface{}
}

func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (l *Logger) Debug(msg string, keyVals ...interface{}) { l.record("debug", msg, keyVals) }
func (l *Logger) Info(msg string, keyVals ...interface{})  { l.record("info", msg, keyVals) }
func (l *Logger) Error(msg string, keyVals ...interface{}) { l.record("error", msg, keyVals) }

func (l *Logger) With(keyVals ...interface{}) log.Logger {
	return &Logger{
		mu:      l.mu,
		entries: l.entries,
		keyVals: append(append([]interface{}{}, l.keyVals...), keyVals...),
	}
}

func (l *Logger) record(level, msg string, keyVals []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	*l.entries = append(*l.entries, LogEntry{
		Level:   level,
		Message: msg,
		KeyVals: append(append([]interface{}{}, l.keyVals...), keyVals...),
	})
}

// Entries returns the entries recorded at level.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []LogEntry
	for _, entry := range *l.entries {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}
