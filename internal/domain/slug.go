package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	colorPattern = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s, collapses every run of non-alphanumerics into a
// single dash and trims dashes at both ends. The result may be empty.
func Slugify(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// NewStopSlug builds a unique-enough slug for a stop created from a route save.
func NewStopSlug(name string) string {
	return withSuffix(Slugify(name), "stop")
}

func NewTerminalSlug(name string) string {
	return withSuffix(Slugify(name), "terminal")
}

func withSuffix(base, fallback string) string {
	if base == "" {
		base = fallback
	}
	return base + "-" + uuid.NewString()[:8]
}

func IsValidColor(s string) bool {
	return colorPattern.MatchString(s)
}

// NormalizeColor returns the colour with a leading '#'.
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return s
	}
	return "#" + s
}
