package physics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/milk9111/tilephysics/logger"
	"github.com/sirupsen/logrus"
)

// fallbackGravityX/Y apply when even the configured default is unreadable.
const (
	fallbackGravityX = 0.0
	fallbackGravityY = 3.0
)

// ParseGravity reads an "x, y" pair.
func ParseGravity(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q: want \"x, y\"", ErrInvalidGravity, s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidGravity, s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q: %v", ErrInvalidGravity, s, err)
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, fmt.Errorf("%w: %q: not finite", ErrInvalidGravity, s)
	}
	return x, y, nil
}

// ResolveGravity picks the level override when it parses, then the configured
// default, then the built-in fallback. Bad strings are logged, never fatal.
func ResolveGravity(override string, hasOverride bool, fallback string) (float64, float64) {
	log := logger.For("physics")
	if hasOverride {
		x, y, err := ParseGravity(override)
		if err == nil {
			return x, y
		}
		log.WithError(err).Warn("physics: level gravity unreadable, using default")
	}
	x, y, err := ParseGravity(fallback)
	if err == nil {
		return x, y
	}
	log.WithError(err).WithFields(logrus.Fields{"x": fallbackGravityX, "y": fallbackGravityY}).Warn("physics: default gravity unreadable, using fallback")
	return fallbackGravityX, fallbackGravityY
}

// isFlat reports whether gravity counts as top-down: the sum of its
// components lies within ±band.
func isFlat(x, y, band float64) bool {
	sum := x + y
	return sum >= -band && sum <= band
}
