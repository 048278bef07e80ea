package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput_Title(t *testing.T) {
	assert.Nil(t, validateInput("Groceries", nil))

	// Boundary: exactly 200 runes is valid, 201 is not
	assert.Nil(t, validateInput(strings.Repeat("a", 200), nil))
	assert.Equal(t,
		[]string{"Title must be less than 200 characters"},
		validateInput(strings.Repeat("a", 201), nil),
	)

	// Rune count, not byte count
	assert.Nil(t, validateInput(strings.Repeat("é", 200), nil))

	assert.Equal(t,
		[]string{"Title is required and must be a non-empty string"},
		validateInput("", nil),
	)
	assert.Equal(t,
		[]string{"Title is required and must be a non-empty string"},
		validateInput("   \t\n", nil),
	)
}

func TestValidateInput_Content(t *testing.T) {
	short := "some content"
	assert.Nil(t, validateInput("Title", &short))

	// Boundary: exactly 10000 runes is valid, 10001 is not
	atLimit := strings.Repeat("a", 10000)
	assert.Nil(t, validateInput("Title", &atLimit))

	overLimit := strings.Repeat("a", 10001)
	assert.Equal(t,
		[]string{"Content must be less than 10000 characters"},
		validateInput("Title", &overLimit),
	)
}

func TestValidateInput_MultipleFailures(t *testing.T) {
	overLimit := strings.Repeat("a", 10001)
	details := validateInput("", &overLimit)

	require.Len(t, details, 2)
	assert.Contains(t, details, "Title is required and must be a non-empty string")
	assert.Contains(t, details, "Content must be less than 10000 characters")
}

func TestNormalizeContent(t *testing.T) {
	assert.Nil(t, normalizeContent(nil))

	empty := ""
	assert.Nil(t, normalizeContent(&empty))

	whitespace := "   \n"
	assert.Nil(t, normalizeContent(&whitespace))

	padded := "  hello  "
	got := normalizeContent(&padded)
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}
