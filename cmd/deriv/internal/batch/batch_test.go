package batch

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsOrderAndBoundsWorkers(t *testing.T) {
	var inFlight, peak atomic.Int32
	square := func(_ context.Context, x int) (int, bool) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return x * x, x < 0
	}

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out, failed, err := Run(context.Background(), inputs, 3, square)
	require.NoError(t, err)
	assert.False(t, failed)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64}, out)
	assert.LessOrEqual(t, peak.Load(), int32(3))

	_, failed, err = Run(context.Background(), []int{2, -1}, 1, square)
	require.NoError(t, err)
	assert.True(t, failed)
}

func TestParseInputs(t *testing.T) {
	one, isArray, err := parseInputs[map[string]int]([]byte(` {"a": 1} `))
	require.NoError(t, err)
	assert.False(t, isArray)
	assert.Equal(t, []map[string]int{{"a": 1}}, one)

	many, isArray, err := parseInputs[map[string]int]([]byte(`[{"a": 1}, {"a": 2}]`))
	require.NoError(t, err)
	assert.True(t, isArray)
	assert.Len(t, many, 2)

	_, _, err = parseInputs[map[string]int]([]byte(`[]`))
	assert.Error(t, err)
}
