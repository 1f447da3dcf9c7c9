package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"
)

// OpenAIRepo queries the completions endpoint. Transport reliability policy
// (rate limit, sample count) lives here; the generation driver treats any
// failure as zero candidates.
type OpenAIRepo struct {
	BaseHeaders []string
	BaseUrl     string
	Model       string
	MaxTokens   int
	Samples     int
	Limiter     *rate.Limiter
}

type completionReq struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	N           int     `json:"n"`
}

type completionChoice struct {
	Text string `json:"text"`
}

type completionListing struct {
	Choices []completionChoice `json:"choices"`
}

func (r OpenAIRepo) Completions(ctx context.Context, promptText string, temperature float64) ([]string, error) {
	if r.Limiter != nil {
		err := r.Limiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
	}

	samples := r.Samples
	if samples == 0 {
		samples = 1
	}

	body, err := json.Marshal(completionReq{
		Model:       r.Model,
		Prompt:      promptText,
		Temperature: temperature,
		MaxTokens:   r.MaxTokens,
		N:           samples})

	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/completions", r.BaseUrl)
	listing, err := request[completionListing](ctx, reqConfig{Method: "POST", Url: url, Headers: r.BaseHeaders, Body: body}, 200)

	if err != nil {
		return nil, err
	}

	completions := make([]string, len(listing.Choices))
	for i := 0; i < len(listing.Choices); i++ {
		completions[i] = listing.Choices[i].Text
	}

	return completions, nil
}
