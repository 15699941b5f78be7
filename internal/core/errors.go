package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidInterval = errors.New("please enter a positive whole number for the interval in minutes")

// MaxIntervalMinutes is the largest interval whose duration fits in a
// time.Duration.
const MaxIntervalMinutes = int(math.MaxInt64 / int64(time.Minute))

// IntervalError reports a rejected interval value.
type IntervalError struct {
	Input string
}

func (e *IntervalError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid interval %q: %v", e.Input, ErrInvalidInterval)
}

func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

// ParseInterval converts user text into a positive number of minutes.
func ParseInterval(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	minutes, err := strconv.Atoi(s)
	if err != nil || ValidateMinutes(minutes) != nil {
		return 0, &IntervalError{Input: raw}
	}
	return minutes, nil
}

// ValidateMinutes accepts 1..MaxIntervalMinutes.
func ValidateMinutes(minutes int) error {
	if minutes <= 0 || minutes > MaxIntervalMinutes {
		return &IntervalError{Input: strconv.Itoa(minutes)}
	}
	return nil
}

// MinutesToDuration converts a minute count into a duration.
func MinutesToDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}
