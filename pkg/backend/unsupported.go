package backend

import (
	"context"

	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
)

// Unsupported answers every optional operation with NoSupport. Backends
// embed it and override what they implement. TimeoutSet and Close are
// absent: every backend must provide them.
type Unsupported struct{}

func noSupport(op string) error {
	return errdefs.Newf(errdefs.NoSupport, "%s is not supported", op)
}

func (Unsupported) Systems(context.Context, Flags) ([]*types.System, error) {
	return nil, noSupport("systems")
}

func (Unsupported) Disks(context.Context, Flags) ([]*types.Disk, error) {
	return nil, noSupport("disks")
}

func (Unsupported) Pools(context.Context, Flags) ([]*types.Pool, error) {
	return nil, noSupport("pools")
}

func (Unsupported) Volumes(context.Context, Flags) ([]*types.Volume, error) {
	return nil, noSupport("volumes")
}

func (Unsupported) Batteries(context.Context, Flags) ([]*types.Battery, error) {
	return nil, noSupport("batteries")
}

func (Unsupported) FileSystems(context.Context, Flags) ([]*types.FileSystem, error) {
	return nil, noSupport("fs")
}

func (Unsupported) Capabilities(context.Context, *types.System, Flags) (*types.Capabilities, error) {
	return nil, noSupport("capabilities")
}

func (Unsupported) VolumeRaidInfo(context.Context, *types.Volume, Flags) (*types.VolumeRaidInfo, error) {
	return nil, noSupport("volume_raid_info")
}

func (Unsupported) PoolMemberInfo(context.Context, *types.Pool, Flags) (*types.PoolMemberInfo, error) {
	return nil, noSupport("pool_member_info")
}

func (Unsupported) VolumeRaidCreateCapGet(context.Context, *types.System, Flags) (*types.RaidCreateCap, error) {
	return nil, noSupport("volume_raid_create_cap_get")
}

func (Unsupported) VolumeRaidCreate(context.Context, string, types.RaidType, []*types.Disk, uint32, Flags) (*types.Volume, error) {
	return nil, noSupport("volume_raid_create")
}

func (Unsupported) VolumeCacheInfo(context.Context, *types.Volume, Flags) (*types.VolumeCacheInfo, error) {
	return nil, noSupport("volume_cache_info")
}

func (Unsupported) VolumePhysicalDiskCacheUpdate(context.Context, *types.Volume, types.CachePolicy, Flags) error {
	return noSupport("volume_physical_disk_cache_update")
}

func (Unsupported) VolumeWriteCachePolicyUpdate(context.Context, *types.Volume, types.CachePolicy, Flags) error {
	return noSupport("volume_write_cache_policy_update")
}

func (Unsupported) VolumeReadCachePolicyUpdate(context.Context, *types.Volume, types.CachePolicy, Flags) error {
	return noSupport("volume_read_cache_policy_update")
}

func (Unsupported) VolumeDelete(context.Context, *types.Volume, Flags) (string, error) {
	return "", noSupport("volume_delete")
}

func (Unsupported) Exports(context.Context, string, string, Flags) ([]*types.NfsExport, error) {
	return nil, noSupport("exports")
}

func (Unsupported) ExportFS(context.Context, *types.ExportRequest, Flags) (*types.NfsExport, error) {
	return nil, noSupport("export_fs")
}

func (Unsupported) ExportRemove(context.Context, *types.NfsExport, Flags) error {
	return noSupport("export_remove")
}

func (Unsupported) ExportAuth(context.Context, Flags) ([]string, error) {
	return nil, noSupport("export_auth")
}
