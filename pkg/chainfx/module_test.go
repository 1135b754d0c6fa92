package chainfx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/joeydtaylor/initchain/pkg/admin"
	"github.com/joeydtaylor/initchain/pkg/chain"
	"github.com/joeydtaylor/initchain/pkg/chainfx"
	"github.com/joeydtaylor/initchain/pkg/chaintest"
	"github.com/joeydtaylor/initchain/pkg/logging"
	"github.com/joeydtaylor/initchain/pkg/manifest"
)

func testManifest(t *testing.T, doc string) manifest.Config {
	t.Helper()
	cfg, err := manifest.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestRunOnStartResetOnStop(t *testing.T) {
	m := testManifest(t, "[chain]\nname = \"fx\"\nreset_on_stop = true\n[params]\nmode = \"fx\"\n")
	reg := chain.New()
	rec := chaintest.NewRecorder()
	var seen string
	chain.NewLink(reg, 1, func(_ context.Context, cfg chain.Config) error {
		seen = cfg.Get("mode", "")
		rec.CountInit(1)
		return nil
	}, chain.WithReset(func(context.Context, chain.Config) error {
		rec.CountReset(1)
		return nil
	}))

	var rn chain.Runner
	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		chainfx.Module(chainfx.Options{Manifest: m, Registry: reg}),
		fx.Populate(&rn),
	)
	app.RequireStart()
	require.Equal(t, chain.StateSucceeded, reg.State())
	require.Equal(t, "fx", reg.Name())
	require.Equal(t, "fx", seen)
	require.Same(t, reg, rn.Registry())

	app.RequireStop()
	require.Equal(t, chain.StateReady, reg.State())
	require.Equal(t, map[int]int{1: 1}, rec.Resets())
}

func TestFailedChainFailsStart(t *testing.T) {
	reg := chain.New()
	p := chaintest.NewProbe(reg, 3, true, nil, nil)
	p.ArmFailure()

	app := fx.New(
		fx.NopLogger,
		fx.Supply(zap.NewNop()),
		chainfx.Module(chainfx.Options{Manifest: manifest.Default(), Registry: reg}),
	)
	err := app.Start(context.Background())
	require.ErrorContains(t, err, "level 3")
	require.Equal(t, chain.StateFailed, reg.State())
}

func TestAdminServer(t *testing.T) {
	t.Setenv("INITCHAIN_TEST_SECRET", "s3cret")
	m := testManifest(t, "[chain]\nname = \"srv\"\n[admin]\nenable = true\nlisten = \"127.0.0.1:0\"\njwt_secret_env = \"INITCHAIN_TEST_SECRET\"\n")
	reg := chain.New()
	chaintest.NewProbe(reg, 1, true, nil, nil)

	var srv *chainfx.Server
	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		fx.Provide(func() *logging.Access { return logging.NewAccess(zap.NewNop()) }),
		chainfx.Module(chainfx.Options{Manifest: m, Registry: reg}),
		fx.Populate(&srv),
	)
	app.RequireStart()
	defer app.RequireStop()
	require.NotEmpty(t, srv.Addr())

	res, err := http.Get("http://" + srv.Addr() + "/chain")
	require.NoError(t, err)
	var st admin.Status
	require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	res.Body.Close()
	require.Equal(t, "srv", st.Chain)
	require.Equal(t, "succeeded", st.State)

	auth, err := admin.NewAuth([]byte("s3cret"), m.Admin.Issuer)
	require.NoError(t, err)
	tok, err := auth.Issue("ops", "", time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "http://"+srv.Addr()+"/chain/reset", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, chain.StateReady, reg.State())
}
