package platform

import (
	"fmt"
	"strings"
)

// Conventional Commit types used in vault history.
const (
	CommitTypeFeat     = "feat"
	CommitTypeFix      = "fix"
	CommitTypeDocs     = "docs"
	CommitTypeStyle    = "style"
	CommitTypeRefactor = "refactor"
	CommitTypePerf     = "perf"
	CommitTypeTest     = "test"
	CommitTypeChore    = "chore"
)

// Footer marks commits written by quill.
const Footer = "Quill-Change: true"

// FormatChangeReason builds a Conventional Commit message:
//
//	type(scope): subject
//
//	body
//
//	Quill-Change: true
func FormatChangeReason(ctype, scope, subject, body string) string {
	if ctype == "" {
		ctype = CommitTypeChore
	}
	var b strings.Builder
	if scope != "" {
		fmt.Fprintf(&b, "%s(%s): %s", ctype, scope, subject)
	} else {
		fmt.Fprintf(&b, "%s: %s", ctype, subject)
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	return AppendFooter(b.String())
}

// AppendFooter appends the quill footer to an arbitrary message, once.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	return strings.TrimRight(msg, "\n") + "\n\n" + Footer
}
