package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// ErrLoginRateLimited is returned by CheckLogin when an IP sends too many attempts.
var ErrLoginRateLimited = errors.New("too many login attempts, please try again later")

// AccountLockedError is returned by CheckLogin for a locked username.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked due to too many failed attempts, try again in %d minutes",
		int(e.Remaining.Minutes())+1)
}

// SecurityMiddleware provides centralized security functionality.
type SecurityMiddleware struct {
	logger         *security.Logger
	config         *security.SecurityConfig
	loginLimiter   *security.RateLimiter
	postLimiter    *security.RateLimiter
	signupLimiter  *security.RateLimiter
	accountLockout *security.AccountLockout
	monitor        *security.SecurityMonitor
}

// NewSecurityMiddleware creates a new security middleware instance.
// Call Stop on shutdown to release the limiter goroutines.
func NewSecurityMiddleware(logger *security.Logger, config *security.SecurityConfig, alerter security.Alerter) *SecurityMiddleware {
	return &SecurityMiddleware{
		logger:        logger,
		config:        config,
		loginLimiter:  security.NewRateLimiter(config.LoginRateLimit, config.LoginRefill),
		postLimiter:   security.NewRateLimiter(config.RateLimitPost, config.PostRefill),
		signupLimiter: security.NewRateLimiter(config.RateLimitSignup, config.SignupRefill),
		accountLockout: security.NewAccountLockout(
			config.AccountLockoutThreshold, config.AccountLockoutDuration, config.FailedAttemptWindow),
		monitor: security.NewSecurityMonitor(logger, config, alerter),
	}
}

// Monitor exposes the security monitor to handlers.
func (sm *SecurityMiddleware) Monitor() *security.SecurityMonitor { return sm.monitor }

// PostLimiter throttles post creation and editing.
func (sm *SecurityMiddleware) PostLimiter() *security.RateLimiter { return sm.postLimiter }

// SignupLimiter throttles account registration.
func (sm *SecurityMiddleware) SignupLimiter() *security.RateLimiter { return sm.signupLimiter }

// Stop stops all rate limiters.
func (sm *SecurityMiddleware) Stop() {
	sm.loginLimiter.Stop()
	sm.postLimiter.Stop()
	sm.signupLimiter.Stop()
}

// CSRFProtection rejects state-changing requests whose token does not match
// the one stored in the session. The token is read from the X-CSRF-Token
// header or the csrf_token form field.
func (sm *SecurityMiddleware) CSRFProtection(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "Invalid session")
		}

		sessionToken, _ := sess.Get(KeyCSRFToken).(string)
		if sessionToken == "" {
			sess.Set(KeyCSRFToken, generateCSRFToken())
			_ = sess.Save()
			sm.csrfViolation(c, "missing_token")
			return fiber.NewError(fiber.StatusForbidden, "CSRF token missing")
		}

		requestToken := c.Get("X-CSRF-Token")
		if requestToken == "" {
			requestToken = c.FormValue(KeyCSRFToken)
		}
		if requestToken != sessionToken {
			sm.csrfViolation(c, "token_mismatch")
			return fiber.NewError(fiber.StatusForbidden, "CSRF token invalid")
		}

		return c.Next()
	}
}

func (sm *SecurityMiddleware) csrfViolation(c *fiber.Ctx, reason string) {
	id, name, _ := CurrentUser(c)
	sm.logger.SecurityEvent(security.EventCSRFViolation, actorPtr(id), name, c.IP(), c.Get("User-Agent"),
		map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"reason": reason,
		})
}

// SetCSRFToken makes the session CSRF token available to templates,
// creating it on first use.
func (sm *SecurityMiddleware) SetCSRFToken(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}

		token, _ := sess.Get(KeyCSRFToken).(string)
		if token == "" {
			token = generateCSRFToken()
			sess.Set(KeyCSRFToken, token)
			if err := sess.Save(); err != nil {
				sm.logger.Error("failed to save session", err)
			}
		}

		c.Locals(KeyCSRFToken, token)
		return c.Next()
	}
}

// CheckLogin refuses a login attempt when the client IP is rate limited or
// the username is locked out.
func (sm *SecurityMiddleware) CheckLogin(username, ipAddress string) error {
	if !sm.loginLimiter.Allow(ipAddress) {
		sm.logger.SecurityEvent(security.EventRateLimitExceeded, nil, username, ipAddress, "",
			map[string]interface{}{
				"endpoint": LoginURL,
				"limit":    sm.config.LoginRateLimit,
			})
		return ErrLoginRateLimited
	}

	if sm.accountLockout.IsLocked(username) {
		remaining := sm.accountLockout.LockoutRemaining(username)
		sm.logger.SecurityEvent(security.EventAccountLocked, nil, username, ipAddress, "",
			map[string]interface{}{
				"locked_for": remaining.String(),
			})
		return &AccountLockedError{Remaining: remaining}
	}

	return nil
}

// RecordLoginFailure counts a failed login towards lockout and alerting.
func (sm *SecurityMiddleware) RecordLoginFailure(username, ipAddress string) {
	locked := sm.accountLockout.RecordFailedAttempt(username)

	sm.logger.SecurityEvent(security.EventLoginFailure, nil, username, ipAddress, "",
		map[string]interface{}{
			"locked": locked,
		})

	sm.monitor.MonitorLoginFailure(ipAddress)
}

// RecordLoginSuccess clears failed attempts for username.
func (sm *SecurityMiddleware) RecordLoginSuccess(username, ipAddress string, userID int) {
	sm.accountLockout.ResetAttempts(username)
	sm.loginLimiter.Reset(ipAddress)

	sm.logger.SecurityEvent(security.EventLoginSuccess, &userID, username, ipAddress, "", nil)
}

// RateLimit throttles requests per signed-in user, or per IP for anonymous ones.
func (sm *SecurityMiddleware) RateLimit(limiter *security.RateLimiter, endpointName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		id, name, ok := CurrentUser(c)
		if ok {
			identifier = "user_" + strconv.Itoa(id)
		}

		if !limiter.Allow(identifier) {
			sm.logger.SecurityEvent(security.EventRateLimitExceeded, actorPtr(id), name, c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"endpoint":   endpointName,
					"identifier": identifier,
				})

			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded, please try again later")
		}

		return c.Next()
	}
}

// RequestLogger logs every request with its status, latency and request ID.
// An incoming X-Request-ID is reused; otherwise a new one is generated.
func (sm *SecurityMiddleware) RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals("request_id", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		sm.logger.HTTPRequest(c.Method(), c.Path(), status, time.Since(start).Milliseconds(),
			c.IP(), c.Get("User-Agent"), requestID)

		if status == fiber.StatusForbidden {
			id, name, _ := CurrentUser(c)
			sm.logger.SecurityEvent(security.EventUnauthorizedAccess, actorPtr(id), name, c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"method": c.Method(),
					"path":   c.Path(),
				})
		}

		return err
	}
}

// SecureHeaders adds security headers to responses. HSTS is only sent when
// hsts is true, since development servers run over plain HTTP.
func (sm *SecurityMiddleware) SecureHeaders(hsts bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if hsts {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		return c.Next()
	}
}

func actorPtr(id int) *int {
	if id == 0 {
		return nil
	}
	return &id
}

// generateCSRFToken generates a cryptographically secure random token.
func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.URLEncoding.EncodeToString([]byte(uuid.NewString()))
	}
	return base64.URLEncoding.EncodeToString(b)
}
