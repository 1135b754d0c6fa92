package chaintest_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/initchain/pkg/chaintest"
)

func TestRecorder(t *testing.T) {
	rec := chaintest.NewRecorder()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.CountInit(1)
			rec.CountReset(2)
			rec.SetState("x", true)
		}()
	}
	wg.Wait()

	require.Equal(t, map[int]int{1: 10}, rec.Inits())
	require.Equal(t, map[int]int{2: 10}, rec.Resets())
	require.Equal(t, 10, rec.State("x"))

	for range 12 {
		rec.SetState("x", false)
	}
	require.Zero(t, rec.State("x"))
	require.Equal(t, map[string]int{"x": 0}, rec.States())

	// copies are detached
	rec.Inits()[1] = 99
	require.Equal(t, 10, rec.Inits()[1])
}

func TestTrace(t *testing.T) {
	var tr chaintest.Trace
	tr.Add("init:%d", 3)
	tr.Add("reset:%d", -1)
	require.Equal(t, []string{"init:3", "reset:-1"}, tr.Events())
	require.Equal(t, 2, tr.Len())
	tr.Clear()
	require.Zero(t, tr.Len())
}
