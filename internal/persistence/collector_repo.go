package persistence

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/felixbrock/mochagen/internal/domain"
	"github.com/google/uuid"
)

// CollectorRepo accumulates everything the generation runs produce. It is
// shared by concurrently running (function, temperature) runs, so every
// operation holds the lock. Test records are idempotent by source identity:
// recording the same source again returns the same record with the new
// prompt id accumulated.
type CollectorRepo struct {
	mu      sync.Mutex
	bySrc   map[string]*domain.TestInfo
	order   []string
	runs    []*domain.GenRun
	prompts []domain.PromptRecord
	counter int
}

func NewCollectorRepo() *CollectorRepo {
	return &CollectorRepo{bySrc: map[string]*domain.TestInfo{}}
}

func (r *CollectorRepo) RecordTestInfo(source string, promptId string, accessPath string) (*domain.TestInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.bySrc[source]
	if !ok {
		r.counter++
		info = &domain.TestInfo{
			Id:         uuid.New().String(),
			TestName:   fmt.Sprintf("test_%s_%d", sanitize(accessPath), r.counter),
			TestSource: source,
			AccessPath: accessPath,
			Outcome:    domain.TestOutcome{Status: domain.OutcomePending},
		}
		r.bySrc[source] = info
		r.order = append(r.order, source)
	}

	if !contains(info.Prompts, promptId) {
		info.Prompts = append(info.Prompts, promptId)
	}

	snapshot := copyInfo(info)
	return &snapshot, nil
}

func (r *CollectorRepo) RecordTestResult(id string, temperature float64, outcome domain.TestOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < len(r.order); i++ {
		info := r.bySrc[r.order[i]]
		if info.Id == id {
			info.Outcome = outcome
			info.Results = append(info.Results, domain.TestResult{Temperature: temperature, Outcome: outcome})
			return nil
		}
	}

	return fmt.Errorf("no recorded test with id %s", id)
}

func (r *CollectorRepo) RecordPromptInfo(record domain.PromptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prompts = append(r.prompts, record)
	return nil
}

func (r *CollectorRepo) RecordRun(run domain.GenRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, &run)
	return nil
}

func (r *CollectorRepo) UpdateRun(id string, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < len(r.runs); i++ {
		if r.runs[i].Id == id {
			r.runs[i].State = state
			return nil
		}
	}

	return fmt.Errorf("no recorded run with id %s", id)
}

func (r *CollectorRepo) Snapshot() domain.Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := domain.Report{}
	for i := 0; i < len(r.order); i++ {
		report.Tests = append(report.Tests, copyInfo(r.bySrc[r.order[i]]))
	}
	for i := 0; i < len(r.runs); i++ {
		report.Runs = append(report.Runs, *r.runs[i])
	}
	report.Prompts = append(report.Prompts, r.prompts...)

	return report
}

// WriteCSV exports the recorded tests, one row per test.
func (r *CollectorRepo) WriteCSV(w io.Writer) error {
	report := r.Snapshot()

	writer := csv.NewWriter(w)
	for i := 0; i < len(report.Tests); i++ {
		info := report.Tests[i]
		record := []string{
			info.Id,
			info.TestName,
			info.AccessPath,
			string(info.Outcome.Status),
			info.Outcome.Message,
			info.TestSource,
		}
		err := writer.Write(record)
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func copyInfo(info *domain.TestInfo) domain.TestInfo {
	snapshot := *info
	snapshot.Prompts = append([]string(nil), info.Prompts...)
	snapshot.Results = append([]domain.TestResult(nil), info.Results...)
	return snapshot
}

func contains(items []string, item string) bool {
	for i := 0; i < len(items); i++ {
		if items[i] == item {
			return true
		}
	}
	return false
}

func sanitize(accessPath string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, accessPath)
}
