package artifact

import (
	"fmt"
	"strconv"
	"strings"
)

var typePrefixes = map[Type]string{
	TypeGoal:     "GL",
	TypeFeature:  "FT",
	TypeResearch: "RS",
	TypeUseCase:  "UC",
	TypeTask:     "TSK",
	TypeUMLModel: "UML",
}

// Prefix returns the ID prefix for a type, or "" for an unknown type.
func Prefix(t Type) string {
	return typePrefixes[t]
}

// TypeForPrefix resolves the artifact type owning an ID prefix.
func TypeForPrefix(prefix string) (Type, bool) {
	for t, p := range typePrefixes {
		if p == prefix {
			return t, true
		}
	}
	return "", false
}

// FormatID builds the canonical ID for a type and sequence number.
// The format is PREFIX-XXX where XXX is a zero-padded number of at least 3 digits.
func FormatID(t Type, n int) string {
	return fmt.Sprintf("%s-%03d", Prefix(t), n)
}

// NextID returns the ID following currentMax for the type.
func NextID(t Type, currentMax int) string {
	return FormatID(t, currentMax+1)
}

// ParseID splits an ID into its prefix and sequence number.
// ok is false when the ID is not PREFIX-DIGITS.
func ParseID(id string) (prefix string, n int, ok bool) {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, false
	}
	prefix, digits := id[:idx], id[idx+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return "", 0, false
	}
	return prefix, n, true
}

// TypeFromID infers the artifact type from an ID's prefix.
func TypeFromID(id string) (Type, bool) {
	prefix, _, ok := ParseID(id)
	if !ok {
		return "", false
	}
	return TypeForPrefix(prefix)
}

// Number returns the sequence number of an ID, or -1 if the ID is malformed.
func Number(id string) int {
	_, n, ok := ParseID(id)
	if !ok {
		return -1
	}
	return n
}

// IsCanonicalID reports whether id is exactly FormatID(t, n) for its number,
// so "GL-1" and "GL-0001" are rejected in favour of "GL-001".
func IsCanonicalID(t Type, id string) bool {
	prefix, n, ok := ParseID(id)
	if !ok || prefix != Prefix(t) {
		return false
	}
	return FormatID(t, n) == id
}
