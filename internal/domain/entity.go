package domain

type APIFunction struct {
	PackageName    string `json:"package_name"`
	AccessPath     string `json:"access_path"`
	Signature      string `json:"signature"`
	DocComment     string `json:"doc_comment"`
	Implementation string `json:"implementation"`
}

type OutcomeStatus string

const (
	OutcomePending OutcomeStatus = "pending"
	OutcomePassed  OutcomeStatus = "passed"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeInvalid OutcomeStatus = "invalid"
)

type TestOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Message string        `json:"message"`
}

func Passed() TestOutcome {
	return TestOutcome{Status: OutcomePassed}
}

func Failed(message string) TestOutcome {
	return TestOutcome{Status: OutcomeFailed, Message: message}
}

func Invalid(message string) TestOutcome {
	return TestOutcome{Status: OutcomeInvalid, Message: message}
}

type TestResult struct {
	Temperature float64     `json:"temperature"`
	Outcome     TestOutcome `json:"outcome"`
}

type TestInfo struct {
	Id         string       `json:"id"`
	TestName   string       `json:"test_name"`
	TestSource string       `json:"test_source"`
	AccessPath string       `json:"access_path"`
	Prompts    []string     `json:"prompts"`
	Outcome    TestOutcome  `json:"outcome"`
	Results    []TestResult `json:"results"`
}

type GenRun struct {
	Id          string  `json:"id"`
	Function    string  `json:"function"`
	Temperature float64 `json:"temperature"`
	State       string  `json:"state"`
}

type PromptRecord struct {
	Id          string   `json:"id"`
	Text        string   `json:"text"`
	Temperature float64  `json:"temperature"`
	Completions []string `json:"completions"`
}

type SnippetMap map[string][]string

type Report struct {
	Tests   []TestInfo     `json:"tests"`
	Runs    []GenRun       `json:"runs"`
	Prompts []PromptRecord `json:"prompts"`
}

func (r Report) PassedCount() int {
	count := 0
	for i := 0; i < len(r.Tests); i++ {
		if r.Tests[i].Outcome.Status == OutcomePassed {
			count++
		}
	}
	return count
}
