package server

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	maxNameLength       = 20
	maxPredictionLength = 280
)

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validatePredictionText(text string) (string, error) {
	return validateText("text", text, maxPredictionLength)
}

func validateText(field, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if len(trimmed) > max {
		return "", fmt.Errorf("%s must be %d characters or fewer", field, max)
	}
	if !isSafeText(trimmed) {
		return "", errors.New(field + " contains unsupported characters")
	}
	return trimmed, nil
}

func isSafeText(value string) bool {
	for _, r := range value {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
