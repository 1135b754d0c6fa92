package demo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
	"github.com/joeydtaylor/initchain/pkg/demo"
)

func TestDynWorkersDeleteThemselves(t *testing.T) {
	ctx := context.Background()
	reg := chain.New()
	hist := &chaintest.Trace{}
	w := map[string]*demo.DynWorker{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		w[name] = demo.NewDynWorker(reg, (i+1)*10, name, hist)
	}
	rn := chain.NewRunner(reg)

	pass := func(op string, want int) []string {
		t.Helper()
		hist.Clear()
		if op == "run" {
			require.NoError(t, rn.Run(ctx, nil))
		} else {
			require.NoError(t, rn.Reset(ctx, nil))
		}
		require.Equal(t, want, hist.Len(), "%s: %v", op, hist.Events())
		return hist.Events()
	}

	pass("run", 8)
	pass("reset", 8)

	// middle
	w["c"].ArmDeleteOnInit()
	w["f"].ArmDeleteOnReset()
	require.Contains(t, pass("run", 8), "c: init-delete")
	require.Contains(t, pass("reset", 7), "f: reset-delete")

	// start
	w["a"].ArmDeleteOnInit()
	w["b"].ArmDeleteOnReset()
	require.Equal(t, "a: init-delete", pass("run", 6)[0])
	require.Equal(t, "b: reset-delete", pass("reset", 5)[0])

	// end
	w["h"].ArmDeleteOnInit()
	w["g"].ArmDeleteOnReset()
	events := pass("run", 4)
	require.Equal(t, "h: init-delete", events[len(events)-1])
	events = pass("reset", 3)
	require.Equal(t, "g: reset-delete", events[len(events)-1])

	require.Equal(t, []string{"d: init", "e: init"}, pass("run", 2))
	require.Equal(t, 2, reg.Len())
	for _, name := range []string{"a", "b", "c", "f", "g", "h"} {
		require.False(t, w[name].Link().Linked(), name)
	}
}
