package editor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/editor"
)

func TestTextDraft_Verbatim(t *testing.T) {
	tests := []string{
		"Buy milk",
		"Tom & Jerry",
		"if x<y and y>z then",
		"use <stdio.h> header",
		"<b>not bold</b> &amp; literal",
		`say "hi", it's fine`,
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			d := editor.NewTextDraft(text)
			out, err := d.Commit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, text, out)
			assert.Empty(t, d.String())
		})
	}
}

func TestTextDraft_FormatKeepsCharacters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Ampersand", "Tom & Jerry", "<b>Tom &amp; Jerry</b>"},
		{"Comparison", "x<y and y>z", "<b>x&lt;y and y&gt;z</b>"},
		{"Tag Lookalike", "use <stdio.h>", "<b>use &lt;stdio.h&gt;</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := editor.NewTextDraft(tt.text)
			require.NoError(t, d.ApplyAll(editor.Bold))

			out, err := d.Commit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTextDraft_ImageMakesItRich(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := editor.NewTextDraft("a & b ")
	d.AttachImage(ctx, writePNG(t, t.TempDir(), "dot.png"))

	out, err := d.Commit(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "a &amp; b <img"), out)
}
