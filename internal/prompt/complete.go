package prompt

import (
	"errors"
	"strings"
)

// ErrUnparseable signals that a candidate body could not be balanced into a
// syntactically self-contained test.
var ErrUnparseable = errors.New("unparseable test body")

const bodyIndent = "        "

// CompleteTest converts a raw candidate body into self-contained test source.
// A body without its own suite declaration gets the import block (when its
// first line has no require) and a suite/case wrapper; with stubHeaders the
// wrapper uses generic names so candidates differing only in test names
// complete to identical source. The one failure path is ErrUnparseable when
// the fragment's brackets cannot be closed mechanically.
func (p *Prompt) CompleteTest(body string, stubHeaders bool) (string, error) {
	if strings.Contains(body, "describe(") {
		return closeBrackets(body)
	}

	firstLine := body
	if i := strings.Index(body, "\n"); i >= 0 {
		firstLine = body[:i]
	}
	needsImports := !strings.Contains(firstLine, "require(")

	suiteHeader := p.suiteHeader
	testHeader := p.testHeader
	if stubHeaders {
		suiteHeader = stubSuiteHeader
		testHeader = stubTestHeader
	}

	code := suiteHeader + "\n" + testHeader + "\n" + reindentFirstLine(body)
	if needsImports {
		code = p.imports + "\n" + code
	}

	return closeBrackets(code)
}

func reindentFirstLine(body string) string {
	first, rest, found := strings.Cut(body, "\n")
	first = bodyIndent + strings.TrimLeft(first, " \t")
	if !found {
		return first
	}
	return first + "\n" + rest
}

// closeBrackets appends the closers for any brackets left open in code,
// in reverse opening order. Brackets inside string literals or comments are
// not recognized; this is a best-effort pass, and a closer that mismatches
// the innermost open bracket makes the fragment unparseable.
func closeBrackets(code string) (string, error) {
	var stack []byte

	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(', '[', '{':
			stack = append(stack, code[i])
		case ')', ']', '}':
			if len(stack) == 0 || closerFor(stack[len(stack)-1]) != code[i] {
				return "", ErrUnparseable
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		var closers strings.Builder
		for i := len(stack) - 1; i >= 0; i-- {
			closers.WriteByte(closerFor(stack[i]))
		}
		if !strings.HasSuffix(code, "\n") {
			code += "\n"
		}
		code += closers.String()
	}

	return collapseTrailingClosers(code), nil
}

func closerFor(opener byte) byte {
	switch opener {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// collapseTrailingClosers rewrites a trailing })}) into a properly indented
// case-then-suite closing.
func collapseTrailingClosers(code string) string {
	if !strings.HasSuffix(code, "})})") {
		return code
	}
	return code[:len(code)-4] + "    })\n})"
}
