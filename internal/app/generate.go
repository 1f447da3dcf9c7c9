package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixbrock/mochagen/internal/domain"
	"github.com/felixbrock/mochagen/internal/prompt"
	"github.com/google/uuid"
)

type ModelRepo interface {
	Completions(ctx context.Context, promptText string, temperature float64) ([]string, error)
}

type ValidatorRepo interface {
	ValidateTest(ctx context.Context, name string, source string) (domain.TestOutcome, error)
}

type CollectorRepo interface {
	RecordTestInfo(source string, promptId string, accessPath string) (*domain.TestInfo, error)
	RecordTestResult(id string, temperature float64, outcome domain.TestOutcome) error
	RecordPromptInfo(record domain.PromptRecord) error
	RecordRun(run domain.GenRun) error
	UpdateRun(id string, state string) error
}

type SnippetRepo interface {
	Snippets(functionName string) []string
}

type EventRepo interface {
	Capture(eventType string, id string) error
}

// Generator drives, per function and sampling temperature, a deduplicating
// depth-first search over the prompt space: query model, extract candidates,
// validate each, then refine and continue until a candidate passes or the
// worklist is exhausted.
type Generator struct {
	ModelRepo     ModelRepo
	ValidatorRepo ValidatorRepo
	CollectorRepo CollectorRepo
	SnippetRepo   SnippetRepo
	TemplateRepo  prompt.TemplateStore
	EventRepo     EventRepo
	Temperatures  []float64
	PromptOpts    prompt.Options
}

// Generate runs the search for one function across all configured
// temperatures. Runs for distinct functions share no state and are started
// concurrently by the caller.
func (g Generator) Generate(ctx context.Context, fn domain.APIFunction) {
	for i := 0; i < len(g.Temperatures); i++ {
		err := g.run(ctx, fn, g.Temperatures[i])

		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}
}

func (g Generator) run(ctx context.Context, fn domain.APIFunction, temperature float64) error {
	runId := uuid.New().String()
	err := g.CollectorRepo.RecordRun(domain.GenRun{
		Id:          runId,
		Function:    fn.AccessPath,
		Temperature: temperature,
		State:       "running"})

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}

	g.capture("run_started", runId)

	defer func() {
		state := "completed"
		if err != nil {
			state = "failed"
		}
		updateErr := g.CollectorRepo.UpdateRun(runId, state)
		if updateErr != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", updateErr.Error()))
		}
		g.capture("run_"+state, runId)
	}()

	err = g.search(ctx, fn, temperature)

	return err
}

func (g Generator) search(ctx context.Context, fn domain.APIFunction, temperature float64) error {
	worklist := []prompt.Unit{prompt.New(fn, g.SnippetRepo.Snippets(fn.AccessPath), g.PromptOpts)}
	seen := map[string]prompt.Unit{}
	passed := false

	for len(worklist) > 0 && !passed {
		unit := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		text, err := unit.Assemble(g.TemplateRepo)

		if err != nil {
			// A template that does not resolve is a setup defect; abort the
			// run for this function and temperature.
			return err
		}

		if canonical, ok := seen[text]; ok {
			// Same assembled text was already queried; the canonical prompt
			// absorbs the rediscovered provenance and no query happens.
			log := unit.ProvenanceLog()
			for i := 0; i < len(log); i++ {
				canonical.AddProvenance(log[i])
			}
			continue
		}
		seen[text] = unit

		completions, err := g.ModelRepo.Completions(ctx, text, temperature)

		if err != nil {
			// Transport failure means zero candidates, not a dead run.
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
			completions = nil
		}

		err = g.CollectorRepo.RecordPromptInfo(domain.PromptRecord{
			Id:          unit.Id(),
			Text:        text,
			Temperature: temperature,
			Completions: completions})

		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}

		for i := 0; i < len(completions); i++ {
			candidates := prompt.Candidates(completions[i])

			for j := 0; j < len(candidates); j++ {
				outcome, info := g.validate(ctx, unit, candidates[j], temperature)

				if outcome.Status == domain.OutcomePassed {
					// Remaining candidates still get validated for the
					// record, but no further refinement happens.
					passed = true
					continue
				}

				if passed || info == nil {
					continue
				}

				refiners := prompt.Refiners()
				for k := 0; k < len(refiners); k++ {
					proposals := refiners[k].Refine(unit, candidates[j], outcome)
					for l := 0; l < len(proposals); l++ {
						proposals[l].AddProvenance(prompt.Provenance{
							OriginalPromptId: unit.Id(),
							TestId:           info.Id,
							Refiner:          refiners[k].Name()})
						worklist = append(worklist, proposals[l])
					}
				}
			}
		}
	}

	return nil
}

// validate completes a candidate body, records it, and reports its outcome.
// Empty and unparseable candidates are recorded without touching the
// validator; an already recorded source reuses its recorded outcome.
func (g Generator) validate(ctx context.Context, unit prompt.Unit, candidate string, temperature float64) (domain.TestOutcome, *domain.TestInfo) {
	if strings.TrimSpace(candidate) == "" {
		outcome := domain.Failed("Empty test")
		info := g.record(candidate, unit, temperature, outcome)
		return outcome, info
	}

	completed, err := unit.CompleteTest(candidate, true)

	if err != nil {
		outcome := domain.Invalid(err.Error())
		info := g.record(candidate, unit, temperature, outcome)
		return outcome, info
	}

	info, err := g.CollectorRepo.RecordTestInfo(completed, unit.Id(), unit.Function().AccessPath)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		return domain.Failed(err.Error()), nil
	}

	if info.Outcome.Status != domain.OutcomePending {
		outcome := info.Outcome
		g.recordResult(info.Id, temperature, outcome)
		return outcome, info
	}

	outcome, err := g.ValidatorRepo.ValidateTest(ctx, info.TestName, completed)

	if err != nil {
		outcome = domain.Failed(err.Error())
	}

	g.recordResult(info.Id, temperature, outcome)
	info.Outcome = outcome

	return outcome, info
}

func (g Generator) record(source string, unit prompt.Unit, temperature float64, outcome domain.TestOutcome) *domain.TestInfo {
	info, err := g.CollectorRepo.RecordTestInfo(source, unit.Id(), unit.Function().AccessPath)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		return nil
	}

	g.recordResult(info.Id, temperature, outcome)
	info.Outcome = outcome

	return info
}

func (g Generator) recordResult(id string, temperature float64, outcome domain.TestOutcome) {
	err := g.CollectorRepo.RecordTestResult(id, temperature, outcome)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}

func (g Generator) capture(eventType string, id string) {
	if g.EventRepo == nil {
		return
	}
	err := g.EventRepo.Capture(eventType, id)

	if err != nil {
		slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
	}
}
