package router

import (
	"context"
	"testing"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func volumeOn(systemID string) *types.Volume {
	return &types.Volume{ID: "vol-" + systemID, Name: "data", SystemID: systemID}
}

func TestVolumeDeleteRoutesToOwner(t *testing.T) {
	r, mr, hp := registeredWithDisks(t)

	_, err := r.VolumeDelete(context.Background(), volumeOn("P0002"), backend.FlagReserved)
	require.NoError(t, err)
	assert.Equal(t, 1, hp.calls["volume_delete"])
	assert.Zero(t, mr.calls["volume_delete"])
}

func TestVolumeDeleteUnknownSystem(t *testing.T) {
	r, mr, hp := registeredWithDisks(t)

	_, err := r.VolumeDelete(context.Background(), volumeOn("NOPE"), backend.FlagReserved)
	require.ErrorIs(t, err, errdefs.ErrNotFoundSystem)
	assert.Contains(t, err.Error(), "System not found")
	assert.Zero(t, mr.totalCalls())
	assert.Zero(t, hp.totalCalls())
}

func TestDispatchNilOperand(t *testing.T) {
	r, mr, _ := registeredWithDisks(t)
	ctx := context.Background()

	_, err := r.VolumeDelete(ctx, nil, backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)

	_, err = r.Capabilities(ctx, nil, backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)

	err = r.VolumeWriteCachePolicyUpdate(ctx, nil, types.CacheWriteBack, backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)

	assert.Zero(t, mr.totalCalls())
}

func TestCapabilities(t *testing.T) {
	r, mr, _ := registeredWithDisks(t)

	caps, err := r.Capabilities(context.Background(), &types.System{ID: "SV0001"}, backend.FlagReserved)
	require.NoError(t, err)
	assert.True(t, caps.Supported(types.CapVolumes))
	assert.Equal(t, 1, mr.calls["capabilities"])
}

func TestDispatchPropagatesNoSupport(t *testing.T) {
	r, _, _ := registeredWithDisks(t)
	ctx := context.Background()

	// not implemented by the fake, answered by backend.Unsupported
	_, err := r.VolumeRaidInfo(ctx, volumeOn("SV0001"), backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	_, err = r.PoolMemberInfo(ctx, &types.Pool{ID: "p0", SystemID: "P0001"}, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	_, err = r.VolumeRaidCreateCapGet(ctx, &types.System{ID: "P0001"}, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	_, err = r.VolumeCacheInfo(ctx, volumeOn("P0001"), backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	err = r.VolumePhysicalDiskCacheUpdate(ctx, volumeOn("P0001"), types.CacheDisabled, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	err = r.VolumeReadCachePolicyUpdate(ctx, volumeOn("P0001"), types.CacheEnabled, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)
}

func TestCachePolicyUpdateForwardsError(t *testing.T) {
	r, mr, _ := registeredWithDisks(t)
	want := errdefs.New(errdefs.InvalidArgument, "write back needs a battery")
	mr.errs["volume_write_cache_policy_update"] = want

	err := r.VolumeWriteCachePolicyUpdate(context.Background(), volumeOn("SV0001"), types.CacheWriteBack, backend.FlagReserved)
	assert.Equal(t, want, err)
}

func TestVolumeRaidCreate(t *testing.T) {
	r, mr, hp := registeredWithDisks(t)
	disks := []*types.Disk{
		{ID: "hp-d0", SystemID: "P0001"},
		{ID: "hp-d1", SystemID: "P0001"},
	}

	vol, err := r.VolumeRaidCreate(context.Background(), "mirror", types.RaidType1, disks, 0, backend.FlagReserved)
	require.NoError(t, err)
	assert.Equal(t, "new-mirror", vol.ID)
	assert.Equal(t, "P0001", vol.SystemID)
	assert.Equal(t, 1, hp.calls["volume_raid_create"])
	assert.Zero(t, mr.calls["volume_raid_create"])
	assert.Equal(t, disks, hp.lastDisks)
}

func TestVolumeRaidCreateNoDisks(t *testing.T) {
	r, mr, hp := registeredWithDisks(t)

	for _, disks := range [][]*types.Disk{nil, {}} {
		_, err := r.VolumeRaidCreate(context.Background(), "empty", types.RaidType5, disks, 0, backend.FlagReserved)
		requireCode(t, err, errdefs.InvalidArgument)
		assert.Contains(t, err.Error(), "No disk defined")
	}
	assert.Zero(t, mr.totalCalls())
	assert.Zero(t, hp.totalCalls())
}

func TestVolumeRaidCreateUnknownSystem(t *testing.T) {
	r, _, _ := registeredWithDisks(t)
	disks := []*types.Disk{{ID: "x", SystemID: "NOPE"}}

	_, err := r.VolumeRaidCreate(context.Background(), "v", types.RaidType0, disks, 0, backend.FlagReserved)
	require.ErrorIs(t, err, errdefs.ErrNotFoundSystem)
}
