package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizesCase(t *testing.T) {
	for _, raw := range []string{"Pending", "PENDING", "  pending ", "pending"} {
		s, ok := Parse(raw)
		require.True(t, ok, raw)
		assert.Equal(t, Pending, s)
	}
}

func TestParseUnknown(t *testing.T) {
	for _, raw := range []string{"", "refunded", "shippped", "  "} {
		_, ok := Parse(raw)
		assert.False(t, ok, raw)
	}
}

func TestReachableNeverContainsSelf(t *testing.T) {
	for _, s := range All() {
		for _, next := range Reachable(s) {
			assert.NotEqual(t, s, next, "Reachable(%s) must not contain itself", s)
		}
	}
}

func TestReachableTable(t *testing.T) {
	cases := map[OrderStatus][]OrderStatus{
		Pending:    {Processing, Cancelled},
		Processing: {Pending, Shipped, Cancelled},
		Shipped:    {Delivered, Returned},
		Delivered:  {Completed},
		Returned:   nil,
		Cancelled:  {Pending, Processing},
		Completed:  nil,
	}
	for from, want := range cases {
		assert.Equal(t, want, Reachable(from), "Reachable(%s)", from)
	}
}

func TestReachableUnknownIsEmpty(t *testing.T) {
	assert.Empty(t, Reachable(OrderStatus("refunded")))
	assert.Empty(t, Reachable(OrderStatus("")))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(Returned))
	assert.True(t, IsTerminal(Completed))
	assert.False(t, IsTerminal(Pending))
	assert.False(t, IsTerminal(OrderStatus("unknown")))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(Pending, Processing))
	assert.True(t, CanTransition(Pending, Pending)) // 幂等重存
	assert.True(t, CanTransition(Cancelled, Pending))
	assert.False(t, CanTransition(Pending, Shipped))
	assert.False(t, CanTransition(Completed, Pending))
	assert.False(t, CanTransition(OrderStatus("bogus"), Pending))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Pending", Label(Pending))
	assert.Equal(t, "Completed", Label(Completed))
	assert.Equal(t, "", Label(OrderStatus("")))
}
