package persistence

import (
	"fmt"
	"os"

	"github.com/felixbrock/mochagen/internal/app"
	"github.com/felixbrock/mochagen/internal/domain"
)

// SnippetRepo serves mined usage snippets per function, loaded once from a
// JSON file of access path to ordered snippet strings. Snippet mining itself
// happens upstream.
type SnippetRepo struct {
	snippets domain.SnippetMap
}

func NewSnippetRepo(path string) (*SnippetRepo, error) {
	if path == "" {
		return &SnippetRepo{snippets: domain.SnippetMap{}}, nil
	}

	content, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading snippet file %s: %w", path, err)
	}

	snippets, err := app.ReadJSON[domain.SnippetMap](content)

	if err != nil {
		return nil, fmt.Errorf("parsing snippet file %s: %w", path, err)
	}

	return &SnippetRepo{snippets: *snippets}, nil
}

func (r *SnippetRepo) Snippets(functionName string) []string {
	return r.snippets[functionName]
}
