package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesSingleFencedBlock(t *testing.T) {
	completion := "Here is the test:\n```js\n    assert.equal(1,1);\n    done();\n```\nHope that helps!"

	candidates := Candidates(completion)

	require.Len(t, candidates, 1)
	assert.Equal(t, "    assert.equal(1,1);\n    done();\n", candidates[0])
}

func TestCandidatesFirstBlockOnly(t *testing.T) {
	completion := "```js\nfirst();\n```\nand also\n```js\nsecond();\n```"

	candidates := Candidates(completion)

	require.Len(t, candidates, 1)
	assert.Equal(t, "first();\n", candidates[0])
}

func TestCandidatesNoFenceFallsBackToWholeCompletion(t *testing.T) {
	completion := "I cannot produce a test for this function."

	candidates := Candidates(completion)

	require.Len(t, candidates, 1)
	assert.Equal(t, completion, candidates[0])
}

func TestCandidatesSplitsMultiTestSuite(t *testing.T) {
	completion := "```js\n" +
		"let plus = require('plus');\n" +
		"describe('test plus', function() {\n" +
		"    it('adds small numbers', function(done) {\n" +
		"        assert.equal(plus(1, 1), 2);\n" +
		"        done();\n" +
		"    });\n" +
		"    it('adds negatives', function(done) {\n" +
		"        assert.equal(plus(-1, -1), -2);\n" +
		"        done();\n" +
		"    });\n" +
		"});\n" +
		"```"

	candidates := Candidates(completion)

	require.Len(t, candidates, 2)
	for i := 0; i < len(candidates); i++ {
		assert.Contains(t, candidates[i], "let plus = require('plus');")
		assert.Contains(t, candidates[i], "describe('test plus', function() {")
	}
	assert.Contains(t, candidates[0], "adds small numbers")
	assert.NotContains(t, candidates[0], "adds negatives")
	assert.Contains(t, candidates[1], "adds negatives")
	assert.NotContains(t, candidates[1], "adds small numbers")

	// Each split candidate completes independently.
	p := New(plusFn(), nil, baseOpts())
	for i := 0; i < len(candidates); i++ {
		completed, err := p.CompleteTest(candidates[i], true)
		require.NoError(t, err)
		assert.Contains(t, completed, "describe('test plus', function() {")
	}
}

func TestCandidatesZeroTestCases(t *testing.T) {
	completion := "```js\nlet x = plus(1, 2);\nconsole.log(x);\n```"

	candidates := Candidates(completion)

	require.Len(t, candidates, 1)
	assert.Equal(t, "let x = plus(1, 2);\nconsole.log(x);\n", candidates[0])
}

func TestCandidatesDoesNotSplitOnWordsEndingInIt(t *testing.T) {
	completion := "```js\ndescribe('s', function() {\n    it('a', function(done) { limit(1); done(); });\n    it('b', function(done) { done(); });\n});\n```"

	candidates := Candidates(completion)

	assert.Len(t, candidates, 2)
}
