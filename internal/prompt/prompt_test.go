package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixbrock/mochagen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore map[string]string

func (s mapStore) Template(name string) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", errors.New("no such template")
	}
	return text, nil
}

func plusFn() domain.APIFunction {
	return domain.APIFunction{
		PackageName:    "plus",
		AccessPath:     "plus",
		Signature:      "plus(x, y)",
		DocComment:     "/** Returns the sum of x and y. */",
		Implementation: "function plus(x, y) { return x + y; }",
	}
}

func baseOpts() Options {
	return Options{TemplateName: "generate.tmpl", RetryTemplateName: "retry.tmpl"}
}

func TestCodeBlockFormat(t *testing.T) {
	store := mapStore{"generate.tmpl": "{{.Code}}"}
	p := New(plusFn(), nil, baseOpts())

	text, err := p.Assemble(store)

	require.NoError(t, err)
	assert.Equal(t,
		"let mocha = require('mocha');\nlet assert = require('assert');\nlet plus = require('plus');\n\ndescribe('test plus', function() {\n    it('test plus', function(done) {\n",
		text)
}

func TestAssembleDeterministic(t *testing.T) {
	store := mapStore{"generate.tmpl": "Please write a test for {{.Signature}}.\n{{.DocComment}}\n{{.FunctionBody}}\n{{.UsageSnippets}}\n{{.Code}}"}
	opts := baseOpts()
	opts.IncludeDocComment = true
	opts.IncludeFunctionBody = true
	opts.IncludeSnippets = true
	p := New(plusFn(), []string{"plus(1, 2);"}, opts)

	first, err := p.Assemble(store)
	require.NoError(t, err)

	second, err := p.Assemble(store)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, Normalize(first), "assembled text must already be normalized")
}

func TestAssembleOptionalSectionsExcludedByDefault(t *testing.T) {
	store := mapStore{"generate.tmpl": "{{.Signature}}\n{{.DocComment}}\n{{.FunctionBody}}\n{{.UsageSnippets}}\n{{.Code}}"}
	p := New(plusFn(), []string{"plus(1, 2);"}, baseOpts())

	text, err := p.Assemble(store)

	require.NoError(t, err)
	assert.NotContains(t, text, "Returns the sum")
	assert.NotContains(t, text, "This function is implemented")
	assert.NotContains(t, text, "// usage #1")
}

func TestAssembleSectionIsolation(t *testing.T) {
	store := mapStore{"generate.tmpl": "{{.Signature}}\n{{.DocComment}}\n{{.FunctionBody}}\n{{.UsageSnippets}}\n{{.Code}}"}

	plain, err := New(plusFn(), nil, baseOpts()).Assemble(store)
	require.NoError(t, err)

	opts := baseOpts()
	opts.IncludeDocComment = true
	withDoc, err := New(plusFn(), nil, opts).Assemble(store)
	require.NoError(t, err)

	assert.NotEqual(t, plain, withDoc)
	assert.Contains(t, withDoc, "Returns the sum")

	// The fixed code block renders identically no matter which optional
	// sections are present.
	code := "describe('test plus', function() {\n    it('test plus', function(done) {\n"
	assert.Contains(t, plain, code)
	assert.Contains(t, withDoc, code)
	assert.True(t, strings.HasPrefix(plain, "plus(x, y)"))
	assert.True(t, strings.HasPrefix(withDoc, "plus(x, y)"))
}

func TestUsageSnippetsNumberedAndCompacted(t *testing.T) {
	store := mapStore{"generate.tmpl": "{{.UsageSnippets}}"}
	opts := baseOpts()
	opts.IncludeSnippets = true
	snippets := []string{"let x = plus(1, 2);\nconsole.log(x);", "plus(0, 0);"}

	text, err := New(plusFn(), snippets, opts).Assemble(store)

	require.NoError(t, err)
	assert.Contains(t, text, "// usage #1\nlet x = plus(1, 2);console.log(x);\n")
	assert.Contains(t, text, "// usage #2\nplus(0, 0);\n")
}

func TestAssembleMissingTemplate(t *testing.T) {
	p := New(plusFn(), nil, baseOpts())

	_, err := p.Assemble(mapStore{})

	assert.Error(t, err)
}

func TestProvenanceAppendOnly(t *testing.T) {
	p := New(plusFn(), nil, baseOpts())
	assert.Empty(t, p.ProvenanceLog())

	p.AddProvenance(Provenance{OriginalPromptId: "a", TestId: "t1", Refiner: "IncludeDocComment"})
	p.AddProvenance(Provenance{OriginalPromptId: "b", TestId: "t2", Refiner: "IncludeSnippets"})

	log := p.ProvenanceLog()
	require.Len(t, log, 2)
	assert.Equal(t, "IncludeDocComment", log[0].Refiner)
	assert.Equal(t, "IncludeSnippets", log[1].Refiner)
}

func TestRetryAssembleEmbedsFailingTest(t *testing.T) {
	store := mapStore{
		"generate.tmpl": "{{.Code}}",
		"retry.tmpl":    "FAILS:\n{{.CompletedTest}}\nERROR: {{.ErrorMessage}}",
	}
	prev := New(plusFn(), nil, baseOpts())
	body := "    assert.equal(plus(1, 1), 3);\n    done();\n"

	completed, err := prev.CompleteTest(body, false)
	require.NoError(t, err)

	retry := NewRetry(prev, body, "expected 2 to equal 3")
	text, err := retry.Assemble(store)

	require.NoError(t, err)
	assert.Equal(t, "FAILS:\n"+completed+"\nERROR: expected 2 to equal 3", text)
	assert.True(t, retry.IsRetry())
	assert.False(t, prev.IsRetry())
}

func TestRetryAssembleSkipsNormalization(t *testing.T) {
	// Three blank lines in the retry template must survive untouched.
	store := mapStore{
		"retry.tmpl": "{{.ErrorMessage}}\n\n\n\nPlease fix it.",
	}
	prev := New(plusFn(), nil, baseOpts())
	retry := NewRetry(prev, "    done();\n", "boom")

	text, err := retry.Assemble(store)

	require.NoError(t, err)
	assert.Contains(t, text, "\n\n\n\nPlease fix it.")
}
