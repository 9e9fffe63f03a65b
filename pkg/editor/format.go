package editor

import (
	"fmt"
	"strings"
)

// Format is an inline formatting command of the toolbar.
type Format string

const (
	Bold          Format = "bold"
	Italic        Format = "italic"
	Underline     Format = "underline"
	UnorderedList Format = "insertUnorderedList"
	OrderedList   Format = "insertOrderedList"
	Heading1      Format = "h1"
	Heading2      Format = "h2"
	Code          Format = "code"
)

// Formats lists every supported command in toolbar order.
func Formats() []Format {
	return []Format{Bold, Italic, Underline, UnorderedList, OrderedList, Heading1, Heading2, Code}
}

// ParseFormat accepts the command names above (case-insensitive) plus the
// short aliases "b", "i", "u", "ul", "ol".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bold", "b":
		return Bold, nil
	case "italic", "i":
		return Italic, nil
	case "underline", "u":
		return Underline, nil
	case "insertunorderedlist", "ul":
		return UnorderedList, nil
	case "insertorderedlist", "ol":
		return OrderedList, nil
	case "h1", "heading1":
		return Heading1, nil
	case "h2", "heading2":
		return Heading2, nil
	case "code":
		return Code, nil
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

func (f Format) tag() string {
	switch f {
	case Bold:
		return "b"
	case Italic:
		return "i"
	case Underline:
		return "u"
	case UnorderedList:
		return "ul"
	case OrderedList:
		return "ol"
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Code:
		return "code"
	}
	return ""
}

// wrap renders text with the markup of f. Lists turn every non-empty line
// into an item.
func (f Format) wrap(text string) string {
	tag := f.tag()
	if f != UnorderedList && f != OrderedList {
		return "<" + tag + ">" + text + "</" + tag + ">"
	}

	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("<li>" + line + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}
