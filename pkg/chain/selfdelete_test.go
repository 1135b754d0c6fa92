package chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
)

// worker releases an arbitrary set of links from its init callback.
func worker(reg *chain.Registry, level int, tr *chaintest.Trace, victims func() []*chain.Link) *chain.Link {
	var self *chain.Link
	self = chain.NewLink(reg, level, func(context.Context, chain.Config) error {
		tr.Add("init:%d", level)
		for _, v := range victims() {
			if v == nil {
				v = self
			}
			v.Release()
		}
		return nil
	}, chain.WithReset(func(context.Context, chain.Config) error { return nil }))
	return self
}

func none() []*chain.Link { return nil }

func TestReleaseSelfDuringInit(t *testing.T) {
	reg := chain.New()
	tr := &chaintest.Trace{}
	worker(reg, 1, tr, none)
	worker(reg, 2, tr, func() []*chain.Link { return []*chain.Link{nil} })
	worker(reg, 3, tr, none)

	require.NoError(t, chain.NewRunner(reg).Run(context.Background(), nil))
	require.Equal(t, []string{"init:1", "init:2", "init:3"}, tr.Events())
	require.Equal(t, 2, reg.Len())
}

func TestReleaseNextNeighbourDuringInit(t *testing.T) {
	reg := chain.New()
	tr := &chaintest.Trace{}
	var three *chain.Link
	worker(reg, 1, tr, none)
	worker(reg, 2, tr, func() []*chain.Link { return []*chain.Link{three} })
	three = worker(reg, 3, tr, none)
	worker(reg, 4, tr, none)

	require.NoError(t, chain.NewRunner(reg).Run(context.Background(), nil))
	require.Equal(t, []string{"init:1", "init:2", "init:4"}, tr.Events())
}

func TestReleaseSelfAndNextDuringInit(t *testing.T) {
	reg := chain.New()
	tr := &chaintest.Trace{}
	var three *chain.Link
	worker(reg, 1, tr, none)
	worker(reg, 2, tr, func() []*chain.Link { return []*chain.Link{nil, three} })
	three = worker(reg, 3, tr, none)
	worker(reg, 4, tr, none)
	worker(reg, 5, tr, none)

	require.NoError(t, chain.NewRunner(reg).Run(context.Background(), nil))
	require.Equal(t, []string{"init:1", "init:2", "init:4", "init:5"}, tr.Events())
	require.Equal(t, 3, reg.Len())
}

func TestReleaseEverythingDuringInit(t *testing.T) {
	reg := chain.New()
	tr := &chaintest.Trace{}
	var tail []*chain.Link
	worker(reg, 1, tr, func() []*chain.Link { return append([]*chain.Link{nil}, tail...) })
	tail = append(tail, worker(reg, 2, tr, none), worker(reg, 3, tr, none))

	require.NoError(t, chain.NewRunner(reg).Run(context.Background(), nil))
	require.Equal(t, []string{"init:1"}, tr.Events())
	require.Zero(t, reg.Len())
	require.Equal(t, chain.StateSucceeded, reg.State())
}

func TestInsertDuringInitFollowsOrder(t *testing.T) {
	reg := chain.New()
	tr := &chaintest.Trace{}
	chain.NewLink(reg, 10, func(context.Context, chain.Config) error {
		tr.Add("init:%d", 10)
		chaintest.NewProbe(reg, 5, true, nil, tr)  // behind the cursor: next pass
		chaintest.NewProbe(reg, 15, true, nil, tr) // ahead of the cursor: this pass
		return nil
	})
	chaintest.NewProbe(reg, 20, true, nil, tr)
	rn := chain.NewRunner(reg)

	require.NoError(t, rn.Run(context.Background(), nil))
	require.Equal(t, []string{"init:10", "init:15", "init:20"}, tr.Events())

	tr.Clear()
	require.NoError(t, rn.Reset(context.Background(), nil))
	require.Equal(t, []string{"reset:5", "reset:15", "reset:20"}, tr.Events())
}
