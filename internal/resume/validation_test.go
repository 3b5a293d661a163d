package resume

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLink(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"   ":                   "",
		"example.com":           "https://example.com",
		" http://example.com ":  "http://example.com",
		"https://example.com/a": "https://example.com/a",
		"mailto:me@example.com": "mailto:me@example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLink(in), "input %q", in)
	}
}

func TestValidateContactItem(t *testing.T) {
	assert.NoError(t, ValidateContactItem(ContactItem{Title: "Phone", Text: "123"}))
	assert.NoError(t, ValidateContactItem(ContactItem{Title: "Email", Text: ""}))
	assert.NoError(t, ValidateContactItem(ContactItem{Title: "Work email", Text: "me@example.com"}))

	err := ValidateContactItem(ContactItem{Position: Position{ID: 2}, Title: "E-mail / Email", Text: "nope"})
	assert.True(t, errors.Is(err, ErrInvalidEmail))

	section := ContactSection{Items: []ContactItem{{Title: "Email", Text: "broken"}}}
	assert.ErrorIs(t, section.Validate(), ErrInvalidEmail)
}

func TestSectionKeyValid(t *testing.T) {
	assert.True(t, SectionHeader.Valid())
	assert.True(t, SectionLanguages.Valid())
	assert.False(t, SectionKey("hobbies").Valid())
}
