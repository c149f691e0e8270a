// File: internal/services/conversation/text.go
package conversation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iyunix/go-onyom/internal/domain"
)

const (
	titleWords    = 6
	titleEllipsis = "..."
)

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// SanitizeContent strips control characters (newlines and tabs survive),
// trims the result and enforces the length limit.
func SanitizeContent(content string) (string, error) {
	text := strings.TrimSpace(stripControl(content))
	if text == "" {
		return "", errors.New("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return "", fmt.Errorf("message must be %d characters or less", domain.MaxMessageLength)
	}
	return text, nil
}

// DeriveTitle uses the first six words of the opening message, marking
// the cut with an ellipsis.
func DeriveTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	title := strings.Join(words[:min(len(words), titleWords)], " ")
	if len(words) > titleWords {
		title += titleEllipsis
	}
	return truncateRunes(title, domain.MaxChatTitleLength)
}

// NormalizeTitle cleans a user-supplied title and cuts it to the maximum length.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(stripControl(title))
	if t == "" {
		return "", errors.New("title cannot be empty")
	}
	return strings.TrimSpace(truncateRunes(t, domain.MaxChatTitleLength)), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
