// Package security provides centralized security configuration and utilities
// for Yatube: structured logging, rate limiting, login lockout, input
// validation and alerting on suspicious activity.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
type SecurityConfig struct {
	// Password storage
	BcryptCost        int // Cost factor for bcrypt hashing
	MinPasswordLength int
	MaxPasswordLength int

	// Brute force protection
	LoginRateLimit          int           // Login attempts allowed per LoginRefill window
	LoginRefill             time.Duration // Time to regain one login attempt
	AccountLockoutThreshold int           // Failed attempts before lockout
	AccountLockoutDuration  time.Duration // How long an account stays locked
	FailedAttemptWindow     time.Duration // Failures older than this start a fresh count

	// Input limits
	MaxUsernameLength   int
	MaxGroupTitleLength int
	MaxSlugLength       int
	MaxPostLength       int // bytes

	// Publishing limits
	RateLimitPost   int           // Posts created before throttling
	PostRefill      time.Duration // Time to regain one post
	RateLimitSignup int
	SignupRefill    time.Duration

	// Monitoring
	MonitoringInterval      time.Duration // Counter reset interval
	AlertThresholdFailures  int           // Failed logins per IP before alerting
	AlertThresholdForbidden int           // Forbidden edits per user before alerting
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		BcryptCost:        12,
		MinPasswordLength: 8,
		MaxPasswordLength: 128,

		LoginRateLimit:          5,
		LoginRefill:             12 * time.Second, // 5 per minute
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,
		FailedAttemptWindow:     30 * time.Minute,

		MaxUsernameLength:   150,
		MaxGroupTitleLength: 200,
		MaxSlugLength:       200,
		MaxPostLength:       64 * 1024, // request body cap, not a schema limit

		RateLimitPost:   30,
		PostRefill:      2 * time.Minute, // 30 per hour
		RateLimitSignup: 3,
		SignupRefill:    20 * time.Minute,

		MonitoringInterval:      5 * time.Minute,
		AlertThresholdFailures:  5,
		AlertThresholdForbidden: 3,
	}
}
