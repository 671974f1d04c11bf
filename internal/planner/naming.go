package planner

import (
	"strconv"
	"strings"
)

const (
	// DefaultBaseName labels destination folders when no base name is supplied.
	DefaultBaseName = "UP聚合"
	// DefaultMaxNameLength is the longest folder title the remote accepts, in characters.
	DefaultMaxNameLength = 20

	destinationSuffixSeparatorConstant = "-"
)

// NamingPolicy names the destination folder of the chunk at index out of total.
type NamingPolicy func(baseName string, index int, total int) string

// NewNamingPolicy returns a NamingPolicy bound to a length limit and a fallback base name.
func NewNamingPolicy(maxLength int, fallbackBaseName string) NamingPolicy {
	if maxLength < 1 {
		maxLength = DefaultMaxNameLength
	}
	if len(strings.TrimSpace(fallbackBaseName)) == 0 {
		fallbackBaseName = DefaultBaseName
	}
	return func(baseName string, index int, total int) string {
		return destinationName(baseName, index, total, maxLength, fallbackBaseName)
	}
}

// DestinationName names a destination folder using the default fallback base name.
// A single chunk gets the bare base name; otherwise the base is shortened so that
// the "-N" suffix fits within maxLength characters.
func DestinationName(baseName string, index int, total int, maxLength int) string {
	return NewNamingPolicy(maxLength, DefaultBaseName)(baseName, index, total)
}

func destinationName(baseName string, index int, total int, maxLength int, fallbackBaseName string) string {
	base := baseName
	if len(base) == 0 {
		base = fallbackBaseName
	}
	base = strings.TrimSpace(truncateRunes(base, maxLength))
	if len(base) == 0 {
		base = fallbackBaseName
	}
	if total <= 1 {
		return base
	}

	suffix := destinationSuffixSeparatorConstant + strconv.Itoa(index+1)
	baseLength := max(1, maxLength-len([]rune(suffix)))
	return truncateRunes(base, baseLength) + suffix
}

func truncateRunes(value string, maxLength int) string {
	runes := []rune(value)
	if len(runes) <= maxLength {
		return value
	}
	return string(runes[:maxLength])
}
