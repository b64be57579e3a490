package router

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnregisterIdempotent(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	nfs := newFakeConn(backend.NFS, "nfs")
	r, _ := newTestRouter(mr, nfs)
	ctx := context.Background()

	require.NoError(t, r.Unregister(ctx, backend.FlagReserved), "unregister before register is a no-op")

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	require.NoError(t, r.Unregister(ctx, backend.FlagReserved))
	require.NoError(t, r.Unregister(ctx, backend.FlagReserved))

	assert.Equal(t, 1, mr.calls["close"])
	assert.Equal(t, 1, nfs.calls["close"])
	assert.Equal(t, StateUnregistered, r.State())
	assert.Empty(t, r.Backends())

	systems, err := r.Systems(ctx, backend.FlagReserved)
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func TestUnregisterClosesEveryConnection(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	hp := newFakeConn(backend.HPSA, "P0001")
	nfs := newFakeConn(backend.NFS, "nfs")
	mr.errs["close"] = errdefs.New(errdefs.PluginBug, "megaraid stuck")
	hp.errs["close"] = errdefs.New(errdefs.PluginBug, "hpsa stuck")
	r, _ := newTestRouter(mr, hp, nfs)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))

	err := r.Unregister(ctx, backend.FlagReserved)
	require.ErrorIs(t, err, errdefs.ErrPluginBug)
	assert.Contains(t, err.Error(), "megaraid stuck")
	assert.Contains(t, err.Error(), "hpsa stuck")

	assert.Equal(t, 1, mr.calls["close"])
	assert.Equal(t, 1, hp.calls["close"])
	assert.Equal(t, 1, nfs.calls["close"])
	assert.Equal(t, StateUnregistered, r.State())
}

func TestUnregisterForgetsBackendHealth(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	nfs := newFakeConn(backend.NFS, "nfs")
	r, opener := newTestRouter(mr, nfs)
	opener.openErrs[backend.NFS] = errBoom
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "local://?ignore_init_error=true", "", 0, backend.FlagReserved))
	components := metrics.GetHealth().Components
	assert.Equal(t, metrics.StatusHealthy, components[metrics.BackendComponent("megaraid")])
	assert.Contains(t, components[metrics.BackendComponent("nfs")], metrics.StatusUnhealthy)

	require.NoError(t, r.Unregister(ctx, backend.FlagReserved))
	components = metrics.GetHealth().Components
	assert.NotContains(t, components, metrics.BackendComponent("megaraid"))
	assert.NotContains(t, components, metrics.BackendComponent("nfs"), "skipped backends are forgotten too")
	assert.NotContains(t, components, metrics.ComponentRouter)
}

func TestRegisterAfterUnregister(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	r, _ := newTestRouter(mr)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	require.NoError(t, r.Close())
	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	defer r.Close()

	assert.Equal(t, StateRegistered, r.State())
}

func TestTimeout(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	hp := newFakeConn(backend.HPSA, "P0001")
	r, _ := newTestRouter(mr, hp)
	ctx := context.Background()

	assert.Equal(t, DefaultTimeout, r.TimeoutGet())
	require.NoError(t, r.TimeoutSet(ctx, time.Second, backend.FlagReserved), "no connections to push to")
	assert.Equal(t, time.Second, r.TimeoutGet())

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	defer r.Close()
	assert.Equal(t, time.Second, r.TimeoutGet(), "register keeps the timeout when given zero")

	require.NoError(t, r.TimeoutSet(ctx, 10*time.Second, backend.FlagReserved))
	assert.Equal(t, 10*time.Second, r.TimeoutGet())
	assert.Equal(t, 10*time.Second, mr.timeout)
	assert.Equal(t, 10*time.Second, hp.timeout)
}

func TestTimeoutSetRejected(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	hp := newFakeConn(backend.HPSA, "P0001")
	nfs := newFakeConn(backend.NFS, "nfs")
	hp.errs["time_out_set"] = errdefs.New(errdefs.InvalidArgument, "timeout too large")
	r, _ := newTestRouter(mr, hp, nfs)
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	defer r.Close()

	err := r.TimeoutSet(ctx, time.Hour, backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)
	assert.Equal(t, time.Hour, mr.timeout)
	assert.Zero(t, nfs.calls["time_out_set"], "connections after the rejecting one are not updated")
}

func TestJobsNotSupported(t *testing.T) {
	r, _ := newTestRouter()
	ctx := context.Background()

	_, _, err := r.JobStatus(ctx, "job-1", backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	err = r.JobFree(ctx, "job-1", backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)
}

func TestInfo(t *testing.T) {
	r, _ := newTestRouter()

	name, version := r.Info()
	assert.Equal(t, "Local Pseudo Plugin", name)
	assert.Equal(t, Version, version)
	assert.Equal(t, "registered", StateRegistered.String())
	assert.Equal(t, "unregistered", StateUnregistered.String())
}

func TestOperationsBeforeRegister(t *testing.T) {
	r, _ := newTestRouter()
	ctx := context.Background()

	disks, err := r.Disks(ctx, "", "", backend.FlagReserved)
	require.NoError(t, err)
	assert.Empty(t, disks)

	_, err = r.Capabilities(ctx, &types.System{ID: "SV0001"}, backend.FlagReserved)
	require.ErrorIs(t, err, errdefs.ErrNotFoundSystem)

	_, err = r.ExportAuth(ctx, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)
}

func TestProbe(t *testing.T) {
	mr := newFakeConn(backend.Megaraid, "SV0001")
	r, _ := newTestRouter(mr)
	ctx := context.Background()

	requireCode(t, r.Probe(ctx, backend.Megaraid), errdefs.InvalidArgument)

	require.NoError(t, r.Register(ctx, "", "", 0, backend.FlagReserved))
	defer r.Close()

	require.NoError(t, r.Probe(ctx, backend.Megaraid))
	assert.Equal(t, 2, mr.calls["systems"])

	mr.errs["systems"] = errBoom
	requireCode(t, r.Probe(ctx, backend.Megaraid), errdefs.PluginBug)
	requireCode(t, r.Probe(ctx, backend.HPSA), errdefs.InvalidArgument)
}
