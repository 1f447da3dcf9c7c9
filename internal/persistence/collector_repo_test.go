package persistence

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/felixbrock/mochagen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTestInfoIdempotentBySource(t *testing.T) {
	repo := NewCollectorRepo()

	first, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)

	second, err := repo.RecordTestInfo("source A", "prompt-2", "plus")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, first.TestName, second.TestName)
	assert.Equal(t, []string{"prompt-1", "prompt-2"}, second.Prompts)

	other, err := repo.RecordTestInfo("source B", "prompt-1", "plus")
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestRecordTestInfoDoesNotDuplicatePromptIds(t *testing.T) {
	repo := NewCollectorRepo()

	_, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)
	info, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)

	assert.Equal(t, []string{"prompt-1"}, info.Prompts)
}

func TestRecordTestResultUpdatesOutcome(t *testing.T) {
	repo := NewCollectorRepo()
	info, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePending, info.Outcome.Status)

	err = repo.RecordTestResult(info.Id, 0.5, domain.Failed("expected 2 to equal 3"))
	require.NoError(t, err)

	latest, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, latest.Outcome.Status)
	require.Len(t, latest.Results, 1)
	assert.Equal(t, 0.5, latest.Results[0].Temperature)

	err = repo.RecordTestResult("no-such-id", 0.5, domain.Passed())
	assert.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	repo := NewCollectorRepo()

	err := repo.RecordRun(domain.GenRun{Id: "r1", Function: "plus", Temperature: 0, State: "running"})
	require.NoError(t, err)

	err = repo.UpdateRun("r1", "completed")
	require.NoError(t, err)

	report := repo.Snapshot()
	require.Len(t, report.Runs, 1)
	assert.Equal(t, "completed", report.Runs[0].State)

	assert.Error(t, repo.UpdateRun("r2", "completed"))
}

func TestSnapshotIsACopy(t *testing.T) {
	repo := NewCollectorRepo()
	info, err := repo.RecordTestInfo("source A", "prompt-1", "plus")
	require.NoError(t, err)

	report := repo.Snapshot()
	require.Len(t, report.Tests, 1)
	report.Tests[0].Outcome = domain.Passed()

	err = repo.RecordTestResult(info.Id, 0, domain.Failed("nope"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, repo.Snapshot().Tests[0].Outcome.Status)
}

func TestCollectorToleratesConcurrentCalls(t *testing.T) {
	repo := NewCollectorRepo()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				info, err := repo.RecordTestInfo("shared source", "prompt", "plus")
				if err != nil {
					t.Error(err)
					return
				}
				_ = repo.RecordTestResult(info.Id, 0, domain.Failed("nope"))
			}
		}(i)
	}
	wg.Wait()

	report := repo.Snapshot()
	assert.Len(t, report.Tests, 1)
}

func TestWriteCSV(t *testing.T) {
	repo := NewCollectorRepo()
	info, err := repo.RecordTestInfo("    assert.ok(true);", "prompt-1", "plus.more")
	require.NoError(t, err)
	err = repo.RecordTestResult(info.Id, 0, domain.Passed())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = repo.WriteCSV(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "test_plus_more_1"))
	assert.True(t, strings.Contains(out, "passed"))
}
