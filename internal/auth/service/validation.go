package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Normalize trims text and collapses every internal whitespace run to a
// single space. Email input is additionally lower-cased.
func Normalize(text string, isEmail bool) string {
	normalized := strings.Join(strings.FieldsFunc(text, isSpace), " ")
	if isEmail {
		normalized = strings.ToLower(normalized)
	}
	return normalized
}

// isSpace matches the ECMAScript WhiteSpace and LineTerminator sets used by
// browsers and JS clients. Unlike unicode.IsSpace it includes U+FEFF and
// excludes U+0085.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func IsValidEmail(email string) bool {
	if email == "" || utf8.RuneCountInString(email) > constants.EmailMaxLength {
		return false
	}

	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" {
		return false
	}
	if utf8.RuneCountInString(local) > constants.EmailLocalMaxLength ||
		utf8.RuneCountInString(domain) > constants.EmailDomainMaxLength {
		return false
	}
	if strings.Contains(local, "..") || strings.Contains(domain, "..") {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}

	return emailRegex.MatchString(email)
}

func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// IsValidPassword requires at least PasswordMinLength characters with one
// lowercase letter, one uppercase letter, one digit and one of
// PasswordSpecialChars. Any other character rejects the password.
func IsValidPassword(password string) bool {
	if len(password) < constants.PasswordMinLength {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.IndexByte(constants.PasswordSpecialChars, c) >= 0:
			hasSpecial = true
		default:
			return false
		}
	}

	return hasLower && hasUpper && hasDigit && hasSpecial
}
