package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surge/internal/expression"
	"github.com/roach88/surge/internal/session"
)

func action(name string) Action {
	return Action{Name: name, Fn: func(context.Context, *session.Session) error { return nil }}
}

func names(c Chain) []string {
	var out []string
	for _, s := range c.Steps() {
		out = append(out, s.String())
	}
	return out
}

func TestChain_ExecIsImmutable(t *testing.T) {
	base := Of(action("a"))
	left := base.Exec(action("b"))
	right := base.Exec(action("c"), action("d"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, []string{`action "a"`, `action "b"`}, names(left))
	assert.Equal(t, []string{`action "a"`, `action "c"`, `action "d"`}, names(right))
}

func TestChain_ExecFlattensChains(t *testing.T) {
	inner := Of(action("b"), action("c"))
	c := Of(action("a"), inner, nil, Pause{Duration: time.Second})

	require.Equal(t, 4, c.Len())
	assert.Equal(t, KindPause, c.Steps()[3].Kind())
}

func TestChain_StepsIsCopy(t *testing.T) {
	c := Of(action("a"))
	steps := c.Steps()
	steps[0] = action("mutated")

	assert.Equal(t, `action "a"`, c.Steps()[0].String())
}

func TestChain_EmptyExecReturnsSame(t *testing.T) {
	assert.Equal(t, 0, Empty.Exec().Len())
	assert.Equal(t, 0, Of(nil).Len())
}

func TestAsLongAs_AppendsLoop(t *testing.T) {
	c, err := Of(action("login")).
		AsLongAs(expression.Static(true), WithCounterName("i")).
		On(action("browse"), action("buy"))
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	loop, ok := c.Steps()[1].(Loop)
	require.True(t, ok)
	assert.Equal(t, "i", loop.CounterName())
	assert.False(t, loop.ExitASAP())
	assert.Equal(t, 2, loop.Body().Len())
}

func TestAsLongAs_ParentUnchanged(t *testing.T) {
	parent := Of(action("login"))
	_, err := parent.AsLongAs(expression.Static(true)).On(action("browse"))
	require.NoError(t, err)

	assert.Equal(t, 1, parent.Len())
}

func TestAsLongAs_EmptyBody(t *testing.T) {
	entry := Empty.AsLongAs(expression.Static(true))

	_, err := entry.On()
	require.Error(t, err)
	assert.True(t, IsEmptyBody(err))
	assert.True(t, errors.Is(err, ErrEmptyBody))

	_, err = entry.On(nil, Empty)
	assert.True(t, IsEmptyBody(err), "nil and empty executables count as no steps")
}

func TestAsLongAs_NilCondition(t *testing.T) {
	_, err := Empty.AsLongAs(nil).On(action("a"))
	assert.True(t, IsInvalidCondition(err))
}

func TestAsLongAsEL_CompileErrorFailsFast(t *testing.T) {
	_, err := Empty.AsLongAsEL("#{i} <")
	require.Error(t, err)
	assert.True(t, IsInvalidCondition(err))

	var ce *expression.CompileError
	assert.ErrorAs(t, err, &ce)
}

func TestAsLongAsEL_Compiles(t *testing.T) {
	entry, err := Empty.AsLongAsEL("#{i} < 3", WithCounterName("i"), ExitASAP())
	require.NoError(t, err)

	c, err := entry.On(action("a"))
	require.NoError(t, err)
	loop := c.Steps()[0].(Loop)
	assert.True(t, loop.ExitASAP())

	s := session.New("u")
	s.SetCounter("i", 2)
	holds, err := loop.Condition().Resolve(s)
	require.NoError(t, err)
	assert.True(t, holds)
}

func TestAsLongAs_CounterNameFixedAtConstruction(t *testing.T) {
	entry := Empty.AsLongAs(expression.Static(true))
	name := entry.CounterName()
	require.NotEmpty(t, name)

	first, err := entry.On(action("a"))
	require.NoError(t, err)
	second, err := entry.On(action("b"))
	require.NoError(t, err)

	assert.Equal(t, name, first.Steps()[0].(Loop).CounterName())
	assert.Equal(t, name, second.Steps()[0].(Loop).CounterName())

	other := Empty.AsLongAs(expression.Static(true))
	assert.NotEqual(t, name, other.CounterName(), "each definition gets its own name")
}

func TestWithCounterName_EmptyKeepsDefault(t *testing.T) {
	entry := Empty.AsLongAs(expression.Static(true), WithCounterName(""))
	assert.NotEmpty(t, entry.CounterName())
}

func TestWalk(t *testing.T) {
	loop, err := Empty.AsLongAs(expression.Static(false)).On(action("inner"))
	require.NoError(t, err)
	c := Of(action("a"), Group{Name: "g", Body: loop})

	var visited []string
	var depths []int
	Walk(c, func(depth int, s Step) {
		visited = append(visited, string(s.Kind()))
		depths = append(depths, depth)
	})

	assert.Equal(t, []string{"action", "group", "loop", "action"}, visited)
	assert.Equal(t, []int{0, 0, 1, 2}, depths)
}
