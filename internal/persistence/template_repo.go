package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixbrock/mochagen/internal/config"
)

// TemplateRepo resolves named prompt templates from a directory. Every lookup
// re-reads the file so edited templates never go stale between runs. A
// missing template is a setup defect and surfaces as a config error.
type TemplateRepo struct {
	Dir string
}

func (r TemplateRepo) Template(name string) (string, error) {
	content, err := os.ReadFile(filepath.Join(r.Dir, name))

	if err != nil {
		return "", &config.Error{Field: "template", Msg: fmt.Sprintf("could not resolve template %s: %s", name, err.Error())}
	}

	return string(content), nil
}
