package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"ecommerce_api/internal/common"
)

// validateEmail accepts a bare address (no display name) whose domain has at least one dot.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.Invalid("Invalid email address")
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return common.Invalid("Invalid email address")
	}
	return nil
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return common.Invalid("%s must be at least %d characters", field, min)
	}
	if n > max {
		return common.Invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

// Pagination bounds shared by every list endpoint.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

func validatePage(skip, limit int) error {
	if skip < 0 {
		return common.Invalid("skip must be greater than or equal to 0")
	}
	if limit < 1 || limit > MaxPageLimit {
		return common.Invalid("limit must be between 1 and %d", MaxPageLimit)
	}
	return nil
}
