package redis

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/atal/internal/domain"
)

// wrapErr adds op context and tags replies that mean a permanent setup
// fault as configuration errors.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if cfgErr := classify(err); cfgErr != nil {
		return fmt.Errorf("failed to %s: %w: %v", op, cfgErr, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "WRONGPASS"),
		strings.HasPrefix(msg, "NOAUTH"),
		strings.HasPrefix(msg, "NOPERM"):
		return domain.ErrInvalidCredentials
	case strings.Contains(msg, "DB index is out of range"),
		strings.Contains(msg, "invalid DB index"):
		return domain.ErrProjectNotFound
	}
	return nil
}
