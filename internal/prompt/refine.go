package prompt

import (
	"strings"

	"github.com/felixbrock/mochagen/internal/domain"
)

// A Refiner inspects a processed prompt, the candidate body the model
// produced, and the validation outcome, and proposes follow-up prompts. Each
// refiner decides locally whether it applies; the set is invoked in the fixed
// order returned by Refiners so worklist insertion stays reproducible.
type Refiner interface {
	Name() string
	Refine(u Unit, completionBody string, outcome domain.TestOutcome) []Unit
}

func Refiners() []Refiner {
	return []Refiner{
		includeSnippets{},
		retryWithError{},
		includeDocComment{},
		includeFunctionBody{},
	}
}

type includeSnippets struct{}

func (includeSnippets) Name() string { return "IncludeSnippets" }

func (r includeSnippets) Refine(u Unit, completionBody string, outcome domain.TestOutcome) []Unit {
	opts := u.Options()
	if opts.IncludeSnippets || len(u.Snippets()) == 0 {
		return nil
	}
	opts.IncludeSnippets = true
	return []Unit{New(u.Function(), u.Snippets(), opts)}
}

type retryWithError struct{}

func (retryWithError) Name() string { return "RetryWithError" }

// At most one retry hop per lineage: a retry prompt is never itself retried.
func (r retryWithError) Refine(u Unit, completionBody string, outcome domain.TestOutcome) []Unit {
	if outcome.Status != domain.OutcomeFailed || u.IsRetry() {
		return nil
	}
	parent, ok := u.(*Prompt)
	if !ok {
		return nil
	}
	return []Unit{NewRetry(parent, completionBody, outcome.Message)}
}

type includeDocComment struct{}

func (includeDocComment) Name() string { return "IncludeDocComment" }

func (r includeDocComment) Refine(u Unit, completionBody string, outcome domain.TestOutcome) []Unit {
	opts := u.Options()
	if opts.IncludeDocComment || u.Function().DocComment == "" {
		return nil
	}
	opts.IncludeDocComment = true
	return []Unit{New(u.Function(), u.Snippets(), opts)}
}

type includeFunctionBody struct{}

func (includeFunctionBody) Name() string { return "IncludeFunctionBody" }

func (r includeFunctionBody) Refine(u Unit, completionBody string, outcome domain.TestOutcome) []Unit {
	opts := u.Options()
	if opts.IncludeFunctionBody || strings.TrimSpace(u.Function().Implementation) == "" {
		return nil
	}
	opts.IncludeFunctionBody = true
	return []Unit{New(u.Function(), u.Snippets(), opts)}
}
