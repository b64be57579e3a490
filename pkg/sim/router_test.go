package sim_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/cuemby/localstor/pkg/sim"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticInventory []string

func (s staticInventory) Modules() ([]string, error) { return s, nil }

func (s staticInventory) HasTool(string) bool { return false }

func newSimRouter(t *testing.T, modules ...string) *router.Router {
	t.Helper()

	reg := backend.NewRegistry()
	sim.RegisterAll(reg, t.TempDir(), backend.Megaraid, backend.HPSA, backend.Arcconf, backend.NFS)

	return router.New(reg,
		router.WithSelector(discovery.NewSelector(discovery.DefaultCatalog(), staticInventory(modules))),
		router.WithPrivilegeCheck(func() bool { return true }),
	)
}

func TestRouterOverSimulatedBackends(t *testing.T) {
	r := newSimRouter(t, "megaraid_sas", "smartpqi", "nfsd")
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "local://?megaraid_system=SV0001&arcconf_system=ARC1&nfs_system=nfs", "", 0, backend.FlagReserved))
	defer r.Close()

	// smartpqi falls back to arcconf when no tool is installed
	assert.Equal(t, []backend.ID{backend.Megaraid, backend.Arcconf, backend.NFS}, r.Backends())

	systems, err := r.Systems(ctx, backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, systems, 3)

	disks, err := r.Disks(ctx, "", "", backend.FlagReserved)
	require.NoError(t, err)
	assert.Len(t, disks, 12, "the file server reports no disks and is skipped")

	disks, err = r.Disks(ctx, types.KeySystemID, "ARC1", backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, disks, 6)

	var free []*types.Disk
	for _, d := range disks {
		if d.Status&types.DiskStatusFree != 0 {
			free = append(free, d)
		}
	}
	volume, err := r.VolumeRaidCreate(ctx, "data", types.RaidType10, free, 0, backend.FlagReserved)
	require.NoError(t, err)
	assert.Equal(t, "ARC1", volume.SystemID)

	volumes, err := r.Volumes(ctx, types.KeySystemID, "ARC1", backend.FlagReserved)
	require.NoError(t, err)
	assert.Len(t, volumes, 2)

	fss, err := r.FileSystems(ctx, "", "", backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, fss, 1)

	req := types.NewExportRequest(fss[0].ID, "/export/data")
	req.RWList = []string{"192.168.1.0/24"}
	export, err := r.ExportFS(ctx, req, backend.FlagReserved)
	require.NoError(t, err)

	exports, err := r.Exports(ctx, types.KeyID, export.ID, backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	require.NoError(t, r.ExportRemove(ctx, exports[0], backend.FlagReserved))

	_, err = r.VolumeDelete(ctx, volume, backend.FlagReserved)
	require.NoError(t, err)
}

func TestRouterIgnoresFailingSimulator(t *testing.T) {
	r := newSimRouter(t, "megaraid_sas", "hpsa")
	ctx := context.Background()

	err := r.Register(ctx, "local://?hpsa_fail=true", "", 0, backend.FlagReserved)
	require.Error(t, err)
	code, _ := errdefs.CodeOf(err)
	assert.Equal(t, errdefs.PluginBug, code)

	require.NoError(t, r.Register(ctx, "local://?hpsa_fail=true&ignore_init_error=true", "", 0, backend.FlagReserved))
	defer r.Close()
	assert.Equal(t, []backend.ID{backend.Megaraid}, r.Backends())

	_, err = r.ExportAuth(ctx, backend.FlagReserved)
	code, _ = errdefs.CodeOf(err)
	assert.Equal(t, errdefs.NoSupport, code)
}

func TestRouterSharedSystemID(t *testing.T) {
	r := newSimRouter(t, "megaraid_sas", "hpsa")
	ctx := context.Background()
	dir := t.TempDir()

	uri := "local://?megaraid_system=SAME&hpsa_system=SAME" +
		"&megaraid_db=" + filepath.Join(dir, "mr.db") +
		"&hpsa_db=" + filepath.Join(dir, "hp.db")
	require.NoError(t, r.Register(ctx, uri, "", 0, backend.FlagReserved))
	defer r.Close()

	systems, err := r.Systems(ctx, backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "Simulated hpsa controller", systems[0].Name)
}

func TestRouterTimeoutRejected(t *testing.T) {
	r := newSimRouter(t, "aacraid")
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, "local://?arcconf_tmo_max=10000", "", 0, backend.FlagReserved))
	defer r.Close()

	err := r.TimeoutSet(ctx, router.DefaultTimeout*10, backend.FlagReserved)
	code, _ := errdefs.CodeOf(err)
	assert.Equal(t, errdefs.InvalidArgument, code)
}
