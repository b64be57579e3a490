package backend

import (
	"context"
	"time"

	"github.com/cuemby/localstor/pkg/types"
)

// ID identifies a backend kind
type ID string

const (
	Megaraid ID = "megaraid" // LSI/Broadcom MegaRAID controllers
	HPSA     ID = "hpsa"     // HPE Smart Array controllers
	Arcconf  ID = "arcconf"  // Microchip/Adaptec controllers
	NFS      ID = "nfs"      // NFS export management
)

// ExportCapable reports whether connections of this kind own NFS export operations
func (id ID) ExportCapable() bool {
	return id == NFS
}

// Flags are passed through to every backend call unchanged
type Flags uint64

// FlagReserved is the only flag value defined today
const FlagReserved Flags = 0

// Connection is the contract every backend implements. Operations a backend
// does not support must return an errdefs.NoSupport error; embedding
// Unsupported provides that for every operation not overridden.
type Connection interface {
	Systems(ctx context.Context, flags Flags) ([]*types.System, error)
	Disks(ctx context.Context, flags Flags) ([]*types.Disk, error)
	Pools(ctx context.Context, flags Flags) ([]*types.Pool, error)
	Volumes(ctx context.Context, flags Flags) ([]*types.Volume, error)
	Batteries(ctx context.Context, flags Flags) ([]*types.Battery, error)
	FileSystems(ctx context.Context, flags Flags) ([]*types.FileSystem, error)

	Capabilities(ctx context.Context, system *types.System, flags Flags) (*types.Capabilities, error)
	VolumeRaidInfo(ctx context.Context, volume *types.Volume, flags Flags) (*types.VolumeRaidInfo, error)
	PoolMemberInfo(ctx context.Context, pool *types.Pool, flags Flags) (*types.PoolMemberInfo, error)
	VolumeRaidCreateCapGet(ctx context.Context, system *types.System, flags Flags) (*types.RaidCreateCap, error)
	VolumeRaidCreate(ctx context.Context, name string, raidType types.RaidType, disks []*types.Disk, stripSize uint32, flags Flags) (*types.Volume, error)
	VolumeCacheInfo(ctx context.Context, volume *types.Volume, flags Flags) (*types.VolumeCacheInfo, error)
	VolumePhysicalDiskCacheUpdate(ctx context.Context, volume *types.Volume, pdc types.CachePolicy, flags Flags) error
	VolumeWriteCachePolicyUpdate(ctx context.Context, volume *types.Volume, wcp types.CachePolicy, flags Flags) error
	VolumeReadCachePolicyUpdate(ctx context.Context, volume *types.Volume, rcp types.CachePolicy, flags Flags) error
	// VolumeDelete returns a job id when the deletion runs asynchronously, "" otherwise.
	VolumeDelete(ctx context.Context, volume *types.Volume, flags Flags) (string, error)

	Exports(ctx context.Context, searchKey, searchValue string, flags Flags) ([]*types.NfsExport, error)
	ExportFS(ctx context.Context, req *types.ExportRequest, flags Flags) (*types.NfsExport, error)
	ExportRemove(ctx context.Context, export *types.NfsExport, flags Flags) error
	ExportAuth(ctx context.Context, flags Flags) ([]string, error)

	TimeoutSet(ctx context.Context, timeout time.Duration, flags Flags) error
	Close(ctx context.Context, flags Flags) error
}

// Opener opens a connection to the backend named by target
type Opener interface {
	Open(ctx context.Context, target string, password string, timeout time.Duration, flags Flags) (Connection, error)
}
