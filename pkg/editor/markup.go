package editor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// policy allows the toolbar's markup and inline data URI images only.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "ul", "ol", "li", "h1", "h2", "code", "pre", "p", "div", "span", "br")
	p.RequireParseableURLs(true)
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").Matching(bluemonday.Paragraph).OnElements("img")
	p.AllowDataURIImages()
	return p
}

// Escape turns plain text into markup that renders as that text.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Unescape reverses Escape.
func Unescape(markup string) string {
	return html.UnescapeString(markup)
}

// Normalize returns content as well-formed, sanitized inline markup:
// unclosed tags are closed, unknown or unsafe elements and attributes are
// dropped, and only data: image sources survive. content is markup: a bare
// '<' opens a tag and '&' starts an entity, so plain text must go through
// Escape first.
func Normalize(content string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("failed to render markup: %w", err)
		}
	}

	return policy.Sanitize(buf.String()), nil
}
