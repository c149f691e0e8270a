// File: internal/services/logger.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is the logging contract every service in this module accepts.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps LOG_LEVEL values to a level, defaulting to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ProductionLogger writes either one JSON object per line or a
// human-readable line, tagged with the owning service name.
type ProductionLogger struct {
	mu         sync.Mutex
	logger     *log.Logger
	level      LogLevel
	service    string
	structured bool
	now        func() time.Time
}

func NewProductionLogger(service string, w io.Writer) *ProductionLogger {
	if w == nil {
		w = os.Stdout
	}
	return &ProductionLogger{
		logger:     log.New(w, "", 0),
		level:      LogLevelInfo,
		service:    service,
		structured: true,
		now:        time.Now,
	}
}

func (p *ProductionLogger) SetLevel(level LogLevel) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *ProductionLogger) SetStructured(structured bool) {
	p.mu.Lock()
	p.structured = structured
	p.mu.Unlock()
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelInfo, msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelError, msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelDebug, msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelWarn, msg, keysAndValues...)
}

func (p *ProductionLogger) log(level LogLevel, msg string, keysAndValues ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if level < p.level {
		return
	}
	timestamp := p.now().UTC().Format(time.RFC3339)

	if p.structured {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"service":   p.service,
			"message":   msg,
		}
		if fields := pairs(keysAndValues); len(fields) > 0 {
			entry["fields"] = fields
		}
		b, err := json.Marshal(entry)
		if err != nil {
			p.logger.Printf(`{"level":"ERROR","service":%q,"message":"unencodable log entry: %v"}`, p.service, err)
			return
		}
		p.logger.Println(string(b))
		return
	}

	var kv strings.Builder
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		kv.WriteString(fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1]))
	}
	p.logger.Printf("[%s] %s [%s] %s%s", timestamp, level.String(), p.service, msg, kv.String())
}

// pairs folds key/value arguments into a map; errors are rendered as text
// since they do not JSON-encode.
func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{})
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr && err != nil {
			fields[key] = err.Error()
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// NoOpLogger discards everything (used in tests).
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger builds the logger for service from ENV and LOG_LEVEL.
func NewLogger(service string) Logger {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "test" {
		return &NoOpLogger{}
	}

	logger := NewProductionLogger(service, os.Stdout)
	logger.SetLevel(ParseLogLevel(os.Getenv("LOG_LEVEL")))
	// JSON lines in production, readable lines everywhere else
	logger.SetStructured(env == "production")
	return logger
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
