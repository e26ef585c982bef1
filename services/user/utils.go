package user

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"fixit/database/repository"
	"fixit/utils"

	"go.uber.org/zap"
)

var (
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasLower  = regexp.MustCompile(`[a-z]`)
	hasNumber = regexp.MustCompile(`[0-9]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	if len(pw) < 8 {
		return utils.NewValidationError("password must be at least 8 characters long")
	}
	if !hasUpper.MatchString(pw) {
		return utils.NewValidationError("password must include at least one uppercase letter")
	}
	if !hasLower.MatchString(pw) {
		return utils.NewValidationError("password must include at least one lowercase letter")
	}
	if !hasNumber.MatchString(pw) {
		return utils.NewValidationError("password must include at least one number")
	}
	return nil
}

// normalizeEmail lowercases and validates an address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", utils.NewValidationError("invalid email address")
	}
	return email, nil
}

// storeError maps a repository failure to the caller-facing kind.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewNotFound("%s: actor not found", op)
	}
	utils.GetLogger().Error(op+": store call failed", zap.Error(err))
	return utils.NewRemoteUnavailable(fmt.Sprintf("%s failed, please try again", op), err)
}
