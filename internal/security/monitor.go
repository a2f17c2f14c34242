package security

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Alerter delivers alerts to an operator channel (mail, chat, pager).
type Alerter interface {
	SendAlert(ctx context.Context, severity, title, message string) error
}

// LogAlerter writes alerts to the security log. It is the default when no
// external channel is configured.
type LogAlerter struct {
	logger *Logger
}

func NewLogAlerter(logger *Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) SendAlert(_ context.Context, severity, title, message string) error {
	a.logger.write(LogEntry{
		Level:   LogLevelCritical,
		Message: title,
		Extra:   map[string]interface{}{"severity": severity, "detail": message},
	})
	return nil
}

// SecurityMonitor counts suspicious events and alerts once a threshold is hit.
// Counters reset every MonitoringInterval.
type SecurityMonitor struct {
	logger  *Logger
	config  *SecurityConfig
	alerter Alerter

	mu             sync.Mutex
	failedLogins   map[string]int // by IP
	forbiddenEdits map[int]int    // by user ID
	lastReset      time.Time
}

// NewSecurityMonitor builds a monitor. A nil alerter falls back to LogAlerter.
func NewSecurityMonitor(logger *Logger, config *SecurityConfig, alerter Alerter) *SecurityMonitor {
	if alerter == nil {
		alerter = NewLogAlerter(logger)
	}
	return &SecurityMonitor{
		logger:         logger,
		config:         config,
		alerter:        alerter,
		failedLogins:   make(map[string]int),
		forbiddenEdits: make(map[int]int),
		lastReset:      time.Now(),
	}
}

// MonitorLoginFailure counts a failed login from ipAddress and raises a HIGH
// alert exactly when the threshold is reached.
func (m *SecurityMonitor) MonitorLoginFailure(ipAddress string) {
	m.mu.Lock()
	m.resetIfDue()
	m.failedLogins[ipAddress]++
	count := m.failedLogins[ipAddress]
	m.mu.Unlock()

	if count == m.config.AlertThresholdFailures {
		m.alert("HIGH", "Repeated failed logins",
			fmt.Sprintf("%d failed login attempts from %s within %s", count, ipAddress, m.config.MonitoringInterval))
	}
}

// MonitorForbiddenEdit counts attempts by userID to edit posts they do not own.
func (m *SecurityMonitor) MonitorForbiddenEdit(userID, postID int) {
	m.mu.Lock()
	m.resetIfDue()
	m.forbiddenEdits[userID]++
	count := m.forbiddenEdits[userID]
	m.mu.Unlock()

	if count == m.config.AlertThresholdForbidden {
		m.alert("MEDIUM", "Repeated edits of foreign posts",
			fmt.Sprintf("user %d tried to edit posts they do not own %d times (last post %d)", userID, count, postID))
	}
}

// ResetCounters clears counters if MonitoringInterval has elapsed.
func (m *SecurityMonitor) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetIfDue()
}

// resetIfDue must be called with mu held.
func (m *SecurityMonitor) resetIfDue() {
	if time.Since(m.lastReset) < m.config.MonitoringInterval {
		return
	}
	m.failedLogins = make(map[string]int)
	m.forbiddenEdits = make(map[int]int)
	m.lastReset = time.Now()
}

func (m *SecurityMonitor) alert(severity, title, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.alerter.SendAlert(ctx, severity, title, message); err != nil {
		m.logger.Error("failed to send security alert", err)
	}
}
