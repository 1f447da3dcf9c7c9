package prompt

import (
	"regexp"
	"strings"
)

var (
	// Opening fence with an optional language tag, then the shortest run of
	// characters up to the closing fence. Only the first block counts; a
	// completion is assumed to contain at most one meaningful block.
	fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	testCase    = regexp.MustCompile(`\bit\(`)
)

// Candidates parses one raw model completion into independent candidate test
// bodies. When no fenced block is found the whole completion is returned as a
// single candidate; it will fail validation later, but stays recorded. A block
// holding a multi-test suite is split into one-test suites that each keep the
// material before the suite declaration and the suite header itself.
func Candidates(completion string) []string {
	block := completion
	if m := fencedBlock.FindStringSubmatch(completion); m != nil {
		block = m[1]
	}

	cases := testCase.FindAllStringIndex(block, -1)
	if len(cases) <= 1 {
		return []string{block}
	}

	prefix := suitePrefix(block, cases[0][0])
	candidates := make([]string, 0, len(cases))
	for i := 0; i < len(cases); i++ {
		start := cases[i][0]
		if start < len(prefix) {
			// A case marker inside the preserved prefix is not a split point.
			continue
		}
		end := len(block)
		if i+1 < len(cases) {
			end = cases[i+1][0]
		}
		candidates = append(candidates, prefix+block[start:end])
	}

	if len(candidates) == 0 {
		return []string{block}
	}

	return candidates
}

// suitePrefix returns everything up to and including the suite header line.
// Without a suite declaration, everything before the first case keeps the
// shared requires attached to each split candidate.
func suitePrefix(block string, firstCase int) string {
	i := strings.Index(block, "describe(")
	if i < 0 {
		return block[:firstCase]
	}
	nl := strings.Index(block[i:], "\n")
	if nl < 0 {
		return block
	}
	return block[:i+nl+1]
}
