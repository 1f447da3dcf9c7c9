package persistence

import (
	"context"
	"encoding/json"

	"github.com/felixbrock/mochagen/internal/domain"
)

// RunnerRepo hands candidate tests to the external mocha runner service and
// maps its verdict onto a TestOutcome. Executing the test is the runner's
// side effect, not ours.
type RunnerRepo struct {
	BaseHeaders []string
	BaseUrl     string
}

type runnerReq struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

type runnerResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r RunnerRepo) ValidateTest(ctx context.Context, name string, source string) (domain.TestOutcome, error) {
	body, err := json.Marshal(runnerReq{Name: name, Source: source})

	if err != nil {
		return domain.TestOutcome{}, err
	}

	result, err := request[runnerResult](ctx, reqConfig{
		Method:  "POST",
		Url:     r.BaseUrl,
		Headers: append(r.BaseHeaders, "Content-Type:application/json"),
		Body:    body}, 200)

	if err != nil {
		return domain.TestOutcome{}, err
	}

	switch result.Status {
	case "passed":
		return domain.Passed(), nil
	case "failed":
		return domain.Failed(result.Message), nil
	default:
		return domain.Invalid(result.Message), nil
	}
}
