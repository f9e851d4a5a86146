package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/analysis"
	"finlens/internal/domain"
)

func TestRecoverJSON_FencedWithProse(t *testing.T) {
	raw := "Here is the data:\n```json\n{\"currency\":\"USD\",\"unit\":\"millions\",\"years\":[\"FY24\",\"FY23\"]}\n```\nLet me know."

	a, err := analysis.RecoverJSON[domain.FinancialAnalysis](raw)

	require.NoError(t, err)
	assert.Equal(t, "USD", a.Currency)
	assert.Equal(t, domain.Cells{"FY24", "FY23"}, a.Years)
}

func TestRecoverJSON_NumericValues(t *testing.T) {
	raw := `{"income_statement":[{"line_item":"Revenue","values":[3558.65, "3,191.32", null],"confidence":"high"}]}`

	a, err := analysis.RecoverJSON[domain.FinancialAnalysis](raw)

	require.NoError(t, err)
	require.Len(t, a.IncomeStatement, 1)
	assert.Equal(t, domain.Cells{"3558.65", "3,191.32", ""}, a.IncomeStatement[0].Values)
}

func TestRecoverJSON_RepairsTrailingComma(t *testing.T) {
	raw := `{"management_tone": "optimistic", "key_positives": ["Record revenue",],}`

	a, err := analysis.RecoverJSON[domain.EarningsAnalysis](raw)

	require.NoError(t, err)
	assert.Equal(t, domain.ToneOptimistic, a.ManagementTone)
	assert.Equal(t, []string{"Record revenue"}, a.KeyPositives)
}

func TestRecoverJSON_UnquotedKeysAndSingleQuotes(t *testing.T) {
	raw := `{management_tone: 'cautious', key_concerns: ['Weak demand']}`

	a, err := analysis.RecoverJSON[domain.EarningsAnalysis](raw)

	require.NoError(t, err)
	assert.Equal(t, domain.ToneCautious, a.ManagementTone)
	assert.Equal(t, []string{"Weak demand"}, a.KeyConcerns)
}

func TestRecoverJSON_NoObject(t *testing.T) {
	_, err := analysis.RecoverJSON[domain.FinancialAnalysis]("I could not find any statements.")

	assert.ErrorIs(t, err, analysis.ErrNoJSONObject)
}

func TestExtractObject_OutermostSpan(t *testing.T) {
	obj, err := analysis.ExtractObject("note {\"a\":{\"b\":1}} trailing } text")

	require.NoError(t, err)
	assert.Equal(t, "{\"a\":{\"b\":1}} trailing }", obj)
}
