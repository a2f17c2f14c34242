package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWithWriter(&buf, level), &buf
}

// TestLogger_JSONFormat verifies every entry is a single valid JSON object.
func TestLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.Info("Test message")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if entry.Message != "Test message" {
		t.Errorf("Expected message 'Test message', got %q", entry.Message)
	}
	if entry.Level != LogLevelInfo {
		t.Errorf("Expected level INFO, got %q", entry.Level)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("Expected one line, got %q", buf.String())
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(*Logger, string)
		expected LogLevel
	}{
		{"Info", func(l *Logger, m string) { l.Info(m) }, LogLevelInfo},
		{"Warn", func(l *Logger, m string) { l.Warn(m) }, LogLevelWarning},
		{"Error", func(l *Logger, m string) { l.Error(m, nil) }, LogLevelError},
		{"Critical", func(l *Logger, m string) { l.Critical(m, nil) }, LogLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LogLevelDebug)

			tt.logFunc(logger, "test message")

			var entry LogEntry
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatal(err)
			}
			if entry.Level != tt.expected {
				t.Errorf("Expected level %q, got %q", tt.expected, entry.Level)
			}
		})
	}
}

// TestLogger_MinLevel verifies entries below the configured level are dropped
// while security events always pass.
func TestLogger_MinLevel(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelError)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	if buf.Len() != 0 {
		t.Errorf("Expected nothing below ERROR, got %q", buf.String())
	}

	logger.SecurityEvent(EventLogout, nil, "leo", "127.0.0.1", "", nil)
	if buf.Len() == 0 {
		t.Error("Security events must always be written")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":    LogLevelDebug,
		"WARN":     LogLevelWarning,
		"warning":  LogLevelWarning,
		"error":    LogLevelError,
		"critical": LogLevelCritical,
		"":         LogLevelInfo,
		"verbose":  LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLogger_SecurityEvent(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	actorID := 123
	logger.SecurityEvent(
		EventPostEdit,
		&actorID,
		"leo",
		"192.168.1.100",
		"Mozilla/5.0",
		map[string]interface{}{"post_id": 456},
	)

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Level != LogLevelSecurity {
		t.Errorf("Expected SECURITY level, got %q", entry.Level)
	}
	if entry.EventType != EventPostEdit {
		t.Errorf("Expected event type %q, got %q", EventPostEdit, entry.EventType)
	}
	if entry.ActorID == nil || *entry.ActorID != 123 {
		t.Errorf("Expected actor_id 123, got %v", entry.ActorID)
	}
	if entry.ActorName != "leo" {
		t.Errorf("Expected actor_name leo, got %q", entry.ActorName)
	}
	if entry.IPAddress != "192.168.1.100" {
		t.Errorf("Expected ip_address 192.168.1.100, got %q", entry.IPAddress)
	}
	if entry.Extra["post_id"] != float64(456) { // JSON numbers decode as float64
		t.Errorf("Expected extra.post_id 456, got %v", entry.Extra["post_id"])
	}
}

func TestLogger_HTTPRequest(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.HTTPRequest("POST", "/create/", 302, 245, "192.168.1.100", "Mozilla/5.0", "req-1")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Method != "POST" || entry.Path != "/create/" {
		t.Errorf("Unexpected method/path %q %q", entry.Method, entry.Path)
	}
	if entry.Status != 302 {
		t.Errorf("Expected status 302, got %d", entry.Status)
	}
	if entry.LatencyMS != 245 {
		t.Errorf("Expected latency 245ms, got %d", entry.LatencyMS)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("Expected request id req-1, got %q", entry.RequestID)
	}
	if entry.Message != "POST /create/ 302" {
		t.Errorf("Unexpected message %q", entry.Message)
	}
}

func TestLogger_ErrorWithException(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)

	logger.Error("Failed to connect", errors.New("database connection failed"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Error != "database connection failed" {
		t.Errorf("Expected error message, got %q", entry.Error)
	}
}

// TestNewRotatingFile verifies entries land in the configured file.
func TestNewRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yatube.log")
	file := NewRotatingFile(FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1})

	logger := NewLoggerWithWriter(file, LogLevelInfo)
	logger.Info("to file")
	if err := file.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"message":"to file"`) {
		t.Errorf("Log file missing entry: %q", data)
	}
}

type mockAlerter struct {
	alerts []mockAlert
}

type mockAlert struct {
	severity string
	title    string
	message  string
}

func (m *mockAlerter) SendAlert(ctx context.Context, severity, title, message string) error {
	m.alerts = append(m.alerts, mockAlert{severity, title, message})
	return nil
}

func TestSecurityMonitor_FailedLogins(t *testing.T) {
	logger, _ := newBufferLogger(LogLevelInfo)

	config := DefaultSecurityConfig()
	config.AlertThresholdFailures = 3

	alerter := &mockAlerter{}
	monitor := NewSecurityMonitor(logger, config, alerter)

	ipAddress := "192.168.1.100"
	monitor.MonitorLoginFailure(ipAddress)
	monitor.MonitorLoginFailure(ipAddress)
	if len(alerter.alerts) != 0 {
		t.Error("Should not alert below threshold")
	}

	monitor.MonitorLoginFailure(ipAddress)
	monitor.MonitorLoginFailure(ipAddress)

	if len(alerter.alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerter.alerts))
	}
	if alerter.alerts[0].severity != "HIGH" {
		t.Errorf("Expected HIGH severity, got %q", alerter.alerts[0].severity)
	}
	if !strings.Contains(alerter.alerts[0].message, ipAddress) {
		t.Error("Alert message should contain IP address")
	}
}

func TestSecurityMonitor_ForbiddenEdits(t *testing.T) {
	logger, _ := newBufferLogger(LogLevelInfo)

	config := DefaultSecurityConfig()
	config.AlertThresholdForbidden = 2

	alerter := &mockAlerter{}
	monitor := NewSecurityMonitor(logger, config, alerter)

	monitor.MonitorForbiddenEdit(7, 1)
	monitor.MonitorForbiddenEdit(8, 1)
	if len(alerter.alerts) != 0 {
		t.Error("Counts are per user")
	}

	monitor.MonitorForbiddenEdit(7, 2)
	if len(alerter.alerts) != 1 || alerter.alerts[0].severity != "MEDIUM" {
		t.Errorf("Expected one MEDIUM alert, got %+v", alerter.alerts)
	}
}

// TestSecurityMonitor_ResetCounters verifies counters survive until the interval elapses.
func TestSecurityMonitor_ResetCounters(t *testing.T) {
	logger, _ := newBufferLogger(LogLevelInfo)

	config := DefaultSecurityConfig()
	config.MonitoringInterval = 200 * time.Millisecond
	monitor := NewSecurityMonitor(logger, config, &mockAlerter{})

	monitor.MonitorLoginFailure("192.168.1.100")
	monitor.MonitorLoginFailure("192.168.1.100")

	monitor.ResetCounters()
	if monitor.failedLogins["192.168.1.100"] != 2 {
		t.Error("Counters should not reset immediately")
	}

	time.Sleep(250 * time.Millisecond)
	monitor.ResetCounters()
	if len(monitor.failedLogins) != 0 {
		t.Error("Counters should reset after the interval")
	}
}

// TestLogAlerter verifies the default alerter writes to the log.
func TestLogAlerter(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)
	monitor := NewSecurityMonitor(logger, DefaultSecurityConfig(), nil)

	for i := 0; i < DefaultSecurityConfig().AlertThresholdFailures; i++ {
		monitor.MonitorLoginFailure("10.0.0.1")
	}

	if !strings.Contains(buf.String(), "Repeated failed logins") {
		t.Errorf("Expected alert in log, got %q", buf.String())
	}
}

func BenchmarkLogger_SecurityEvent(b *testing.B) {
	logger := NewLoggerWithWriter(&bytes.Buffer{}, LogLevelInfo)

	actorID := 123
	extra := map[string]interface{}{"test": "value"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.SecurityEvent(EventLoginSuccess, &actorID, "leo", "192.168.1.100", "Mozilla/5.0", extra)
	}
}
