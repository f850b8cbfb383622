package domain

import (
	"regexp"
	"strconv"

	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

// intervalPattern accepts an unsigned count followed by a unit word.
// Compound durations ("1 day 2 hours") are not supported.
var intervalPattern = regexp.MustCompile(`^(\d+)\s+(minute|minutes|hour|hours|day|days)$`)

const (
	minutesPerHour = 60
	minutesPerDay  = 1440
)

// ParseInterval converts a human-readable SLA interval ("2 hours",
// "30 minutes", "1 day") into a canonical minute count.
func ParseInterval(text string) (int, error) {
	match := intervalPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, apperrors.NewInvalidFormat("invalid interval format", map[string]any{"interval": text})
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, apperrors.NewInvalidFormat("invalid interval format", map[string]any{"interval": text})
	}
	switch match[2] {
	case "hour", "hours":
		return count * minutesPerHour, nil
	case "day", "days":
		return count * minutesPerDay, nil
	default:
		return count, nil
	}
}
