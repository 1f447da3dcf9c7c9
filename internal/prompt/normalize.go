package prompt

import (
	"regexp"
	"strings"
)

var (
	manyNewlines   = regexp.MustCompile("\n{3,}")
	blankAfterOpen = regexp.MustCompile("(```[a-zA-Z]+\n)\n+")
	// A closing fence is a bare ``` at line start; opening fences carry a
	// language tag in our templates.
	blankBeforeClose = regexp.MustCompile("\n\n+(```(\n|$))")
)

// Words that should open their own paragraph the first time they appear.
var paragraphWords = []string{"Please", "This function", "You may use"}

// Normalize applies the cleanup passes to assembled prompt text until a fixed
// point: runs of 3+ newlines collapse to 2, blank lines hugging fence markers
// are dropped, and each paragraph word is pushed onto its own paragraph. The
// passes keep template output stable no matter which optional sections were
// rendered, and re-normalizing normalized text is a no-op.
func Normalize(text string) string {
	for {
		next := normalizeOnce(text)
		if next == text {
			return text
		}
		text = next
	}
}

func normalizeOnce(text string) string {
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = blankAfterOpen.ReplaceAllString(text, "$1")
	text = blankBeforeClose.ReplaceAllString(text, "\n$1")

	for i := 0; i < len(paragraphWords); i++ {
		text = breakParagraph(text, paragraphWords[i])
	}

	return text
}

// breakParagraph prefixes the first occurrence of word with a newline unless
// it already starts a paragraph. The surrounding fixpoint loop collapses the
// result, so the pass is idempotent.
func breakParagraph(text string, word string) string {
	i := strings.Index(text, word)
	if i <= 0 {
		return text
	}
	if text[i-1] == '\n' && (i == 1 || text[i-2] == '\n') {
		return text
	}
	return text[:i] + "\n" + text[i:]
}
