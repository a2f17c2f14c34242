package security

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel is the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY" // always emitted
)

var levelRank = map[LogLevel]int{
	LogLevelDebug:    0,
	LogLevelInfo:     1,
	LogLevelWarning:  2,
	LogLevelError:    3,
	LogLevelCritical: 4,
}

// ParseLevel maps a config string to a LogLevel. Unknown values mean INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarning
	case "ERROR":
		return LogLevelError
	case "CRITICAL":
		return LogLevelCritical
	default:
		return LogLevelInfo
	}
}

// SecurityEventType names an auditable security event.
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventSignup             SecurityEventType = "SIGNUP"
	EventAccountLocked      SecurityEventType = "ACCOUNT_LOCKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventForbiddenEdit      SecurityEventType = "FORBIDDEN_EDIT"
	EventPostCreate         SecurityEventType = "POST_CREATE"
	EventPostEdit           SecurityEventType = "POST_EDIT"
	EventGroupCreate        SecurityEventType = "GROUP_CREATE"
	EventGroupDelete        SecurityEventType = "GROUP_DELETE"
	EventUserCreate         SecurityEventType = "USER_CREATE"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventCSRFViolation      SecurityEventType = "CSRF_VIOLATION"
)

// LogEntry is one JSON log line.
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	EventType SecurityEventType      `json:"event_type,omitempty"`
	ActorID   *int                   `json:"actor_id,omitempty"`
	ActorName string                 `json:"actor_name,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	Method    string                 `json:"method,omitempty"`
	Path      string                 `json:"path,omitempty"`
	Status    int                    `json:"status,omitempty"`
	LatencyMS int64                  `json:"latency_ms,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Logger writes structured JSON entries, one per line.
// It is safe for concurrent use.
type Logger struct {
	output   *log.Logger
	minLevel LogLevel
}

// NewLogger returns a logger writing INFO and above to stdout.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout, LogLevelInfo)
}

// NewLoggerWithWriter returns a logger writing entries at or above level to w.
func NewLoggerWithWriter(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		output:   log.New(w, "", 0),
		minLevel: level,
	}
}

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewRotatingFile opens a size-rotated log file. Close it on shutdown.
func NewRotatingFile(opts FileOptions) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}

func (l *Logger) enabled(level LogLevel) bool {
	if level == LogLevelSecurity {
		return true
	}
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) write(entry LogEntry) {
	if !l.enabled(entry.Level) {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.output.Printf(`{"level":"ERROR","message":"log marshal failed: %s"}`, err)
		return
	}
	l.output.Println(string(data))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (l *Logger) Debug(msg string) {
	l.write(LogEntry{Level: LogLevelDebug, Message: msg})
}

func (l *Logger) Info(msg string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: msg})
}

func (l *Logger) Warn(msg string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: msg})
}

func (l *Logger) Error(msg string, err error) {
	l.write(LogEntry{Level: LogLevelError, Message: msg, Error: errString(err)})
}

func (l *Logger) Critical(msg string, err error) {
	l.write(LogEntry{Level: LogLevelCritical, Message: msg, Error: errString(err)})
}

// SecurityEvent records an auditable event. actorID is nil for anonymous requests.
func (l *Logger) SecurityEvent(event SecurityEventType, actorID *int, actorName, ipAddress, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:     LogLevelSecurity,
		Message:   fmt.Sprintf("security event: %s", event),
		EventType: event,
		ActorID:   actorID,
		ActorName: actorName,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Extra:     extra,
	})
}

// HTTPRequest records a completed request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ipAddress, userAgent, requestID string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s %d", method, path, status),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		RequestID: requestID,
	})
}
