package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastraven/fastraven/pkg/sanitizer"
)

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		level sanitizer.Level
		want  string
	}{
		{
			name:  "raw passes through",
			in:    "  <b>hi</b>\x00  ",
			level: sanitizer.Raw,
			want:  "  <b>hi</b>\x00  ",
		},
		{
			name:  "trim strips whitespace and control chars",
			in:    "  hello\x00world  ",
			level: sanitizer.Trim,
			want:  "helloworld",
		},
		{
			name:  "trim keeps newlines and tabs",
			in:    "a\tb\nc",
			level: sanitizer.Trim,
			want:  "a\tb\nc",
		},
		{
			name:  "strip removes html",
			in:    `<script>alert(1)</script>plain`,
			level: sanitizer.Strip,
			want:  "plain",
		},
		{
			name:  "strip removes tags but keeps text",
			in:    "<b>bold</b> text",
			level: sanitizer.Strip,
			want:  "bold text",
		},
		{
			name:  "escape encodes markup",
			in:    `<a href="x">link</a>`,
			level: sanitizer.Escape,
			want:  "&lt;a href=&#34;x&#34;&gt;link&lt;/a&gt;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, sanitizer.Apply(tt.in, tt.level))
		})
	}
}

func TestApply_NormalizesUnicode(t *testing.T) {
	t.Parallel()

	// "é" as combining sequence normalizes to the precomposed form.
	decomposed := "é"
	require.Equal(t, "é", sanitizer.Apply(decomposed, sanitizer.Trim))
}
