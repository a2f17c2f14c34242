package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// ValidationService provides input validation.
// All returned errors are safe to show to users.
type ValidationService struct {
	config *SecurityConfig
}

func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{config: config}
}

// ValidateUsername accepts letters, digits and @/./+/-/_ up to MaxUsernameLength.
func (v *ValidationService) ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(username) > v.config.MaxUsernameLength {
		return fmt.Errorf("username must be %d characters or less", v.config.MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and @/./+/-/_ characters")
	}
	return nil
}

// ValidateEmail checks address syntax. Email is optional, so empty passes.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 254 {
		return fmt.Errorf("email must be less than 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword requires a length within bounds and at least one letter and one digit.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < v.config.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", v.config.MinPasswordLength)
	}
	if len(password) > v.config.MaxPasswordLength {
		return fmt.Errorf("password must be less than %d characters", v.config.MaxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateGroupTitle enforces a non-empty title within MaxGroupTitleLength.
func (v *ValidationService) ValidateGroupTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("group title is required")
	}
	if utf8.RuneCountInString(title) > v.config.MaxGroupTitleLength {
		return fmt.Errorf("group title must be %d characters or less", v.config.MaxGroupTitleLength)
	}
	return nil
}

// ValidateSlug enforces the URL-safe slug alphabet.
func (v *ValidationService) ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > v.config.MaxSlugLength {
		return fmt.Errorf("slug must be %d characters or less", v.config.MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug may contain only latin letters, digits, hyphens and underscores")
	}
	return nil
}

// ValidatePostText checks the size of already trimmed post text.
func (v *ValidationService) ValidatePostText(text string) error {
	if text == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > v.config.MaxPostLength {
		return fmt.Errorf("text must be %d bytes or less", v.config.MaxPostLength)
	}
	return nil
}

// ValidateRequired checks if a required field is present and non-blank.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// SanitizeString removes control characters other than newline and tab, and trims.
func (v *ValidationService) SanitizeString(input string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(input, ""))
}
