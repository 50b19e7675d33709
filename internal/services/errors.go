package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes. Stage code wraps errors with one of these so callers can
// decide between aborting and degrading with errors.Is.
var (
	ErrInputUnavailable = errors.New("input unavailable")
	ErrLinguisticEngine = errors.New("linguistic engine unavailable")
	ErrSemanticService  = errors.New("semantic service error")
	ErrLowConfidence    = errors.New("low confidence alignment")
	ErrValidation       = errors.New("validation error")
	ErrConfiguration    = errors.New("configuration error")
	ErrTransient        = errors.New("transient failure")
)

// Wrap tags err with marker and prefixes it with "stage: op: msg". Blank
// parts are dropped. A nil marker means ErrTransient; a nil err yields a
// fresh error.
func Wrap(marker error, stage, op, msg string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	var parts []string
	for _, p := range [...]string{stage, op, msg} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	detail := strings.Join(parts, ": ")
	if detail == "" {
		detail = "service failure"
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// IsFatal is true for failures that end the run: unreadable input and bad
// configuration. All other classes degrade per fragment.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInputUnavailable) || errors.Is(err, ErrConfiguration)
}
