package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Slugify lowercases s and collapses every run of non-alphanumeric characters
// into a single underscore, for use in filenames and storage keys.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true // trim leading separators
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// GenerateBatchId returns an opaque id for a scheduled export batch.
func GenerateBatchId() string {
	timestamp := time.Now().UnixNano()
	random := rand.Intn(1000)
	return fmt.Sprintf("batch_%d_%d", timestamp, random)
}

// FormatAmount renders a decimal as an unscaled integer with thousands
// grouping (e.g. 1250000 -> "1,250,000"). Fractional parts are rounded away;
// report amounts are whole rupiah.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}
