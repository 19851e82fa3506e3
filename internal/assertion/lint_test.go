package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint(t *testing.T) {
	d := dsl()

	tests := []struct {
		name string
		a    Assertion
		want string
	}{
		{"percentile above 100", d.Global().ResponseTime().Percentile(150).Lt(1), "percentile 150 is outside [0,100]"},
		{"negative percentile", d.Global().ResponseTime().Percentile(-1).Lt(1), "percentile -1 is outside [0,100]"},
		{"inverted range", d.Global().AllRequests().Count().Between(9, 1), "range min 9 is greater than max 1 and can never pass"},
		{"empty exclusive range", d.Global().AllRequests().Count().BetweenExclusive(3, 3), "exclusive range is empty and can never pass"},
		{"empty set", d.Global().AllRequests().Count().In(), "value set is empty and can never pass"},
		{"percent operand", d.Global().FailedRequests().Percent().Lt(120), "percentage operand 120 is outside [0,100]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.a)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.want, issues[0].Message)
			assert.Equal(t, tt.a.ID(), issues[0].AssertionID)
		})
	}
}

func TestLint_Clean(t *testing.T) {
	d := dsl()
	clean := []Assertion{
		d.Request("Login").ResponseTime().Percentile3().Lt(500),
		d.Global().FailedRequests().Percent().Between(0, 1),
		d.Global().AllRequests().Count().BetweenExclusive(1, 2),
	}
	assert.Empty(t, LintAll(clean))
}
