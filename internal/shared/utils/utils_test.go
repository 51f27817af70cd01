package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher(t *testing.T) {
	h := DefaultHasher()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.HashString(""))
	assert.Equal(t, h.HashFields("b", "a"), h.HashFields("a", "b"))
	assert.NotEqual(t, h.HashString("a"), h.HashString("b"))
}

func TestETag(t *testing.T) {
	h := DefaultHasher()

	etag := h.ETag("<p>hi</p>")
	assert.Len(t, etag, 34)
	assert.True(t, strings.HasPrefix(etag, `"`))
	assert.Equal(t, etag, h.ETag("<p>hi</p>"))
	assert.NotEqual(t, etag, h.ETag("<p>bye</p>"))
}

func TestMatchesETag(t *testing.T) {
	etag := `"abc"`

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"x"`, false},
		{"*", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesETag(tt.header, etag), tt.header)
	}
}

func TestValidatePosition(t *testing.T) {
	valid := []string{"header", "sidebar-left", "blog.sidebar", "admin:menu", "a/b", "Footer2"}
	for _, p := range valid {
		assert.NoError(t, ValidatePosition(p), p)
	}

	invalid := []string{"", "-lead", "has space", "<script>", strings.Repeat("a", MaxPositionLength+1), "\xff"}
	for _, p := range invalid {
		assert.Error(t, ValidatePosition(p), p)
	}
}

func TestValidatePage(t *testing.T) {
	valid := []string{"", "/", "index", "/blog/post", "about.html", "docs/getting-started"}
	for _, p := range valid {
		assert.NoError(t, ValidatePage(p), p)
	}

	invalid := []string{"../secret", "/blog/../x", "a//b", "sp ace", "x/"}
	for _, p := range invalid {
		assert.Error(t, ValidatePage(p), p)
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, ValidateString("", "name", 1, 5, false))
	assert.Error(t, ValidateString("", "name", 1, 5, true))
	assert.Error(t, ValidateString("toolong", "name", 1, 5, true))
	assert.Error(t, ValidateString("ab", "name", 3, 5, true))
}
