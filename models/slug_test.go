package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple words", input: "Test Title", want: "test-title"},
		{name: "already a slug", input: "fake-post", want: "fake-post"},
		{name: "punctuation runs collapse", input: "Hello,   World!!", want: "hello-world"},
		{name: "leading and trailing separators trimmed", input: "  --Go 1.23--  ", want: "go-1-23"},
		{name: "underscores are separators", input: "fake_post", want: "fake-post"},
		{name: "accents folded", input: "Crème Brûlée", want: "creme-brulee"},
		{name: "non latin dropped", input: "日本 blog", want: "blog"},
		{name: "only symbols", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestBaseSlug_FallsBackWhenEmpty(t *testing.T) {
	assert.Equal(t, "post", BaseSlug("???"))
	assert.Equal(t, "my-first-post", BaseSlug("My first post"))
}

func TestSuffixedSlug(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)

	slug := SuffixedSlug("test-title", at)

	assert.True(t, strings.HasPrefix(slug, "test-title-"))
	assert.Equal(t, "test-title-1709294400123456", slug)
}
