package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128

	passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"
)

// Violation messages returned by ValidatePassword
const (
	RuleRequired  = "password is required"
	RuleMinLength = "password must be at least 8 characters"
	RuleMaxLength = "password must be at most 128 characters"
	RuleUpper     = "password must contain an uppercase letter"
	RuleLower     = "password must contain a lowercase letter"
	RuleDigit     = "password must contain a digit"
	RuleSymbol    = "password must contain a special character"
	RuleCommon    = "password is too common"
	RuleMismatch  = "passwords do not match"
)

var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"letmein":     {},
	"welcome1":    {},
	"admin123":    {},
	"iloveyou":    {},
	"abc12345":    {},
	"passw0rd":    {},
	"p@ssw0rd":    {},
	"p@ssword1":   {},
}

// ValidatePassword returns every rule the password breaks, nil when it is acceptable
func ValidatePassword(password string) []string {
	if password == "" {
		return []string{RuleRequired}
	}

	var violations []string
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		violations = append(violations, RuleMinLength)
	}
	if n > MaxPasswordLength {
		violations = append(violations, RuleMaxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		violations = append(violations, RuleUpper)
	}
	if !hasLower {
		violations = append(violations, RuleLower)
	}
	if !hasDigit {
		violations = append(violations, RuleDigit)
	}
	if !hasSymbol {
		violations = append(violations, RuleSymbol)
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		violations = append(violations, RuleCommon)
	}

	return violations
}
