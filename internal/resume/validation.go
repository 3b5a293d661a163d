package resume

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEmail is returned for an e-mail contact line without an "@".
var ErrInvalidEmail = errors.New("invalid email address")

// NormalizeLink trims link and prefixes bare hosts with https://. mailto:
// and http(s) links are kept as typed; blank links become "".
func NormalizeLink(link string) string {
	trimmed := strings.TrimSpace(link)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "mailto:"),
		strings.HasPrefix(trimmed, "http://"),
		strings.HasPrefix(trimmed, "https://"):
		return trimmed
	default:
		return "https://" + trimmed
	}
}

// ValidateContactItem checks lines whose title mentions an e-mail.
func ValidateContactItem(item ContactItem) error {
	if !strings.Contains(strings.ToLower(item.Title), "email") {
		return nil
	}
	text := strings.TrimSpace(item.Text)
	if text != "" && !strings.Contains(text, "@") {
		return fmt.Errorf("contact item %d: %w", item.ID, ErrInvalidEmail)
	}
	return nil
}

// Validate checks every contact line.
func (s ContactSection) Validate() error {
	for _, item := range s.Items {
		if err := ValidateContactItem(item); err != nil {
			return err
		}
	}
	return nil
}
