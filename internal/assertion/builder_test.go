package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surge/internal/config"
)

func dsl() *DSL {
	return New(config.DefaultPercentiles())
}

func TestBuilder_TimeTargets(t *testing.T) {
	rt := dsl().Request("Login").ResponseTime()

	tests := []struct {
		name  string
		stage TargetStage[int64]
		stat  Stat
	}{
		{"min", rt.Min(), Min{}},
		{"max", rt.Max(), Max{}},
		{"mean", rt.Mean(), Mean{}},
		{"stddev", rt.StdDev(), StdDev{}},
		{"percentile1", rt.Percentile1(), Percentile{Value: 50}},
		{"percentile2", rt.Percentile2(), Percentile{Value: 75}},
		{"percentile3", rt.Percentile3(), Percentile{Value: 95}},
		{"percentile4", rt.Percentile4(), Percentile{Value: 99}},
		{"percentile", rt.Percentile(99.9), Percentile{Value: 99.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.stage.Lt(500)
			assert.True(t, a.Path().Equal(Request("Login")))
			assert.Equal(t, TimeTarget{Metric: ResponseTime, Stat: tt.stat}, a.Target())
			assert.Equal(t, Lt{Value: 500}, a.Condition())
		})
	}
}

func TestBuilder_CountAndPercentTargets(t *testing.T) {
	p := dsl().Group("Checkout")

	tests := []struct {
		name   string
		a      Assertion
		target Target
	}{
		{"all count", p.AllRequests().Count().Gt(0), CountTarget{Metric: AllRequests}},
		{"failed count", p.FailedRequests().Count().Gt(0), CountTarget{Metric: FailedRequests}},
		{"successful count", p.SuccessfulRequests().Count().Gt(0), CountTarget{Metric: SuccessfulRequests}},
		{"all percent", p.AllRequests().Percent().Gt(0), PercentTarget{Metric: AllRequests}},
		{"failed percent", p.FailedRequests().Percent().Gt(0), PercentTarget{Metric: FailedRequests}},
		{"successful percent", p.SuccessfulRequests().Percent().Gt(0), PercentTarget{Metric: SuccessfulRequests}},
		{"rps", p.RequestsPerSec().Gt(0), MeanRequestsPerSecond{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.target, tt.a.Target())
			assert.Equal(t, Gt{Value: 0}, tt.a.Condition())
			assert.Equal(t, "Checkout", tt.a.Path().Label())
		})
	}
}

func TestBuilder_Conditions(t *testing.T) {
	count := dsl().Global().AllRequests().Count()
	percent := dsl().Global().FailedRequests().Percent()

	tests := []struct {
		name string
		a    Assertion
		want Condition
	}{
		{"lt", count.Lt(5), Lt{Value: 5}},
		{"lte", count.Lte(5), Lte{Value: 5}},
		{"gt", count.Gt(5), Gt{Value: 5}},
		{"gte", count.Gte(5), Gte{Value: 5}},
		{"between", count.Between(1, 9), Between{Min: 1, Max: 9, Inclusive: true}},
		{"between exclusive", count.BetweenExclusive(1, 9), Between{Min: 1, Max: 9}},
		{"around", count.Around(10, 2), Between{Min: 8, Max: 12, Inclusive: true}},
		{"around exclusive", count.AroundExclusive(10, 2), Between{Min: 8, Max: 12}},
		{"deviates around", count.DeviatesAround(100, 0.1), Between{Min: 90, Max: 110, Inclusive: true}},
		{"deviates around exclusive", count.DeviatesAroundExclusive(100, 0.1), Between{Min: 90, Max: 110}},
		{"is", count.Is(7), Is{Value: 7}},
		{"should be", count.ShouldBe(7), Is{Value: 7}},
		{"in", count.In(1, 2, 2, 3), NewIn(1, 2, 3)},
		{"within", count.Within(3, 1), NewIn(3, 1)},
		{"percent real operand", percent.Lte(0.5), Lte{Value: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Condition())
		})
	}
}

func TestBuilder_DeviatesAroundFloorsRealMargin(t *testing.T) {
	// margin = floor(2.5 * 0.5) = 1, not 1.25
	a := dsl().Global().RequestsPerSec().DeviatesAround(2.5, 0.5)
	assert.Equal(t, Between{Min: 1.5, Max: 3.5, Inclusive: true}, a.Condition())

	// margin = floor(-10 * 0.15) = -2, so the bounds swap and the range is empty
	b := dsl().Global().AllRequests().Count().DeviatesAround(-10, 0.15)
	assert.Equal(t, Between{Min: -8, Max: -12, Inclusive: true}, b.Condition())
}

func TestBuilder_InDeduplicates(t *testing.T) {
	a := dsl().Global().AllRequests().Count().In(4, 4, 4)
	in := a.Condition().(In)
	assert.Equal(t, []float64{4}, in.Values())
}

func TestBuilder_StagesAreReusable(t *testing.T) {
	stage := dsl().Request("Login").ResponseTime()
	p95 := stage.Percentile3()

	first := p95.Lt(500)
	second := p95.Gt(100)
	other := stage.Max().Lt(2000)

	assert.Equal(t, Lt{Value: 500}, first.Condition())
	assert.Equal(t, Gt{Value: 100}, second.Condition())
	assert.Equal(t, TimeTarget{Metric: ResponseTime, Stat: Percentile{Value: 95}}, first.Target())
	assert.Equal(t, TimeTarget{Metric: ResponseTime, Stat: Max{}}, other.Target())
	assert.Equal(t, TimeTarget{Metric: ResponseTime, Stat: Percentile{Value: 95}}, p95.Target(), "stage unchanged")
}

func TestBuilder_IdenticalAssertionsAreDistinct(t *testing.T) {
	stage := dsl().Global().AllRequests().Count()
	a, b := stage.Gt(0), stage.Gt(0)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, a, b)
	assert.Equal(t, a.Condition(), b.Condition())
}

func TestBuilder_PermissiveConstruction(t *testing.T) {
	rt := dsl().Global().ResponseTime()

	assert.NotPanics(t, func() {
		a := rt.Percentile(150).Lt(10)
		assert.Equal(t, Percentile{Value: 150}, a.Target().(TimeTarget).Stat)

		b := rt.Mean().Between(10, 1)
		assert.Equal(t, Between{Min: 10, Max: 1, Inclusive: true}, b.Condition())

		c := rt.Max().In()
		assert.Empty(t, c.Condition().(In).Values())
	})
}

func TestBuilder_CustomPercentiles(t *testing.T) {
	d := New(config.Percentiles{P1: 10, P2: 20, P3: 30, P4: 99.99})
	a := d.Global().ResponseTime().Percentile4().Lt(1)
	assert.Equal(t, Percentile{Value: 99.99}, a.Target().(TimeTarget).Stat)
}

func TestAssertion_String(t *testing.T) {
	d := dsl()

	tests := []struct {
		a    Assertion
		want string
	}{
		{d.Request("Login").ResponseTime().Percentile3().Lt(500), "Login: 95th percentile of response time is less than 500"},
		{d.Global().FailedRequests().Percent().Lte(1.5), "Global: percentage of failed requests is less than or equal to 1.5"},
		{d.Group("Checkout", "Pay").AllRequests().Count().Between(1, 3), "Checkout / Pay: count of all requests is between 1 and 3 (inclusive)"},
		{d.Global().RequestsPerSec().In(1, 2), "Global: mean requests per second is in [1, 2]"},
		{d.Global().ResponseTime().Percentile(1).Gte(0), "Global: 1st percentile of response time is greater than or equal to 0"},
		{d.Global().ResponseTime().Percentile(12).Is(3), "Global: 12th percentile of response time is 3"},
		{d.Global().ResponseTime().Percentile(99.9).Gt(3), "Global: 99.9th percentile of response time is greater than 3"},
		{d.Global().ResponseTime().StdDev().Lt(3), "Global: standard deviation of response time is less than 3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.String())
		})
	}
}

func TestPath_NormalizesNames(t *testing.T) {
	decomposed := "Cafe\u0301"
	composed := "Caf\u00e9"

	require.NotEqual(t, decomposed, composed)
	assert.True(t, Request(decomposed).Equal(Request(composed)))
	assert.Equal(t, composed, Request(decomposed).Label())
}

func TestPath_Labels(t *testing.T) {
	assert.Equal(t, "Global", Global().Label())
	assert.Equal(t, "Login", Request("Login").Label())
	assert.Equal(t, "Checkout / Pay", Details("Checkout", "Pay").Label())
	assert.False(t, Group("Checkout").Equal(Request("Checkout")))
}

func TestPath_PartsIsCopy(t *testing.T) {
	p := Group("a", "b")
	parts := p.Parts()
	parts[0] = "x"
	assert.Equal(t, []string{"a", "b"}, p.Parts())
}
