package runtime

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/teller/pkg/domain"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "TELLER_MAX_INPUT_SIZE"
)

// SanitizeInput cleans a chat message by enforcing the size limit,
// validating UTF-8, and stripping control characters.
// Surrounding whitespace is trimmed; an empty result is ErrEmptyMessage.
func SanitizeInput(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		// Rejected rather than truncated: a cut message could change its amount.
		return "", fmt.Errorf("%w: size=%d limit=%d", domain.ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", domain.ErrInvalidInput
	}

	// Keep \n, \t and \r. Drop ESC, NUL, BEL and friends so nothing reaches
	// logs or terminals as escape sequences.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	out := input
	if !clean {
		var b strings.Builder
		b.Grow(len(input))
		for _, r := range input {
			if !unicode.IsControl(r) || isSafeControl(r) {
				b.WriteRune(r)
			}
		}
		out = b.String()
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", domain.ErrEmptyMessage
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
