package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/felixbrock/mochagen/internal/domain"
	"github.com/google/uuid"
)

const (
	stubSuiteHeader = "describe('test suite', function() {"
	stubTestHeader  = "    it('test case', function(done) {"
)

// Options controls which optional material is rendered into a prompt and which
// templates drive the rendering.
type Options struct {
	IncludeSnippets     bool
	IncludeDocComment   bool
	IncludeFunctionBody bool
	TemplateName        string
	RetryTemplateName   string
}

// Provenance records how a prompt was derived: which refiner proposed it, from
// which recorded test, from which parent prompt. Records reference ids, not
// live prompts, so independently rediscovered prompts can accumulate several.
type Provenance struct {
	OriginalPromptId string
	TestId           string
	Refiner          string
}

// TemplateStore resolves a named prompt template to its text. Lookups happen
// on every assembly so edited templates are never served stale.
type TemplateStore interface {
	Template(name string) (string, error)
}

// Unit is one item of generation work: an initial prompt or a refined variant.
type Unit interface {
	Id() string
	Assemble(store TemplateStore) (string, error)
	Options() Options
	Function() domain.APIFunction
	Snippets() []string
	IsRetry() bool
	CompleteTest(body string, stubHeaders bool) (string, error)
	AddProvenance(record Provenance)
	ProvenanceLog() []Provenance
}

// Prompt is an immutable snapshot of one prompt request. All textual fields
// are fixed at construction; only provenance may be appended afterwards.
type Prompt struct {
	id           string
	fn           domain.APIFunction
	opts         Options
	snippets     []string
	imports      string
	signature    string
	docComment   string
	functionBody string
	suiteHeader  string
	testHeader   string
	provenance   []Provenance
}

func New(fn domain.APIFunction, snippets []string, opts Options) *Prompt {
	p := Prompt{
		id:          uuid.New().String(),
		fn:          fn,
		opts:        opts,
		snippets:    snippets,
		signature:   strings.TrimSpace(fn.Signature),
		imports:     importBlock(fn.PackageName),
		suiteHeader: fmt.Sprintf("describe('test %s', function() {", fn.PackageName),
		testHeader:  fmt.Sprintf("    it('test %s', function(done) {", fn.AccessPath),
	}

	if opts.IncludeDocComment {
		p.docComment = fn.DocComment
	}
	if opts.IncludeFunctionBody {
		p.functionBody = fn.Implementation
	}

	return &p
}

func importBlock(packageName string) string {
	return fmt.Sprintf(
		"let mocha = require('mocha');\nlet assert = require('assert');\nlet %s = require('%s');\n",
		packageName, packageName)
}

func (p *Prompt) Id() string { return p.id }

func (p *Prompt) Options() Options { return p.opts }

func (p *Prompt) Function() domain.APIFunction { return p.fn }

func (p *Prompt) Snippets() []string { return p.snippets }

func (p *Prompt) IsRetry() bool { return false }

func (p *Prompt) AddProvenance(r Provenance) { p.provenance = append(p.provenance, r) }

func (p *Prompt) ProvenanceLog() []Provenance { return p.provenance }

// code renders the fixed block the completion is expected to continue:
// import lines, suite header and test-case header, concatenated verbatim.
func (p *Prompt) code() string {
	return p.imports + "\n" + p.suiteHeader + "\n" + p.testHeader + "\n"
}

type templateFields struct {
	Signature     string
	DocComment    string
	FunctionBody  string
	UsageSnippets string
	Code          string
}

// Assemble renders the prompt to its exact text: template substitution over
// the five logical fields, then the normalization passes. Deterministic and
// idempotent for a given template store state.
func (p *Prompt) Assemble(store TemplateStore) (string, error) {
	text, err := render(store, p.opts.TemplateName, templateFields{
		Signature:     p.signature,
		DocComment:    p.docComment,
		FunctionBody:  p.functionBodySection(),
		UsageSnippets: p.usageSection(),
		Code:          p.code(),
	})

	if err != nil {
		return "", err
	}

	return Normalize(text), nil
}

func (p *Prompt) functionBodySection() string {
	if p.functionBody == "" {
		return ""
	}
	return fmt.Sprintf("This function is implemented as follows:\n```js\n%s\n```\n",
		strings.TrimRight(p.functionBody, "\n"))
}

// usageSection numbers each snippet and strips its internal newlines (snippet
// lines are joined without separators). The compaction is deliberate and part
// of the output contract.
func (p *Prompt) usageSection() string {
	if !p.opts.IncludeSnippets || len(p.snippets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("You may use the following examples of how the function is used:\n```js\n")
	for i := 0; i < len(p.snippets); i++ {
		fmt.Fprintf(&b, "// usage #%d\n", i+1)
		b.WriteString(strings.Join(strings.Split(p.snippets[i], "\n"), ""))
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	return b.String()
}

func render(store TemplateStore, name string, fields any) (string, error) {
	text, err := store.Template(name)

	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(text)

	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, fields)

	if err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}

	return buf.String(), nil
}

// RetryPrompt asks the model to fix a failing test. It renders the retry
// template instead of the primary one and is never itself retried.
type RetryPrompt struct {
	*Prompt
	prev           *Prompt
	completionBody string
	errMessage     string
}

func NewRetry(prev *Prompt, completionBody string, errMessage string) *RetryPrompt {
	return &RetryPrompt{
		Prompt:         New(prev.fn, prev.snippets, prev.opts),
		prev:           prev,
		completionBody: completionBody,
		errMessage:     errMessage,
	}
}

func (p *RetryPrompt) IsRetry() bool { return true }

type retryFields struct {
	CompletedTest string
	ErrorMessage  string
}

// Assemble renders the retry template with the previous prompt's completed
// failing test and the error message. No normalization passes apply here; the
// embedded test must stay verbatim.
func (p *RetryPrompt) Assemble(store TemplateStore) (string, error) {
	completed, err := p.prev.CompleteTest(p.completionBody, false)

	if err != nil {
		return "", err
	}

	return render(store, p.opts.RetryTemplateName, retryFields{
		CompletedTest: completed,
		ErrorMessage:  p.errMessage,
	})
}
