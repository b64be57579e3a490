package sim

import (
	"github.com/cuemby/localstor/pkg/types"
)

// PoolRecord is a stored pool together with its membership
type PoolRecord struct {
	Pool    types.Pool           `json:"pool"`
	Members types.PoolMemberInfo `json:"members"`
}

// VolumeRecord is a stored volume together with its RAID and cache state
type VolumeRecord struct {
	Volume types.Volume          `json:"volume"`
	Raid   types.VolumeRaidInfo  `json:"raid"`
	Cache  types.VolumeCacheInfo `json:"cache"`
}

// Store defines the interface for simulated controller state
type Store interface {
	// Systems
	PutSystem(system *types.System) error
	ListSystems() ([]*types.System, error)

	// Disks
	PutDisk(disk *types.Disk) error
	GetDisk(id string) (*types.Disk, error)
	ListDisks() ([]*types.Disk, error)

	// Pools
	PutPool(pool *PoolRecord) error
	GetPool(id string) (*PoolRecord, error)
	ListPools() ([]*PoolRecord, error)

	// Volumes
	PutVolume(volume *VolumeRecord) error
	GetVolume(id string) (*VolumeRecord, error)
	ListVolumes() ([]*VolumeRecord, error)

	// CreateRaidVolume stores a new pool and its volume and claims the
	// member disks in one transaction
	CreateRaidVolume(pool *PoolRecord, volume *VolumeRecord) error

	// DeleteRaidVolume removes a volume. The pool behind it is removed and
	// its disks released once no volume uses it.
	DeleteRaidVolume(id string) error

	// Batteries
	PutBattery(battery *types.Battery) error
	ListBatteries() ([]*types.Battery, error)

	// File systems
	PutFileSystem(fs *types.FileSystem) error
	GetFileSystem(id string) (*types.FileSystem, error)
	ListFileSystems() ([]*types.FileSystem, error)

	// Exports
	PutExport(export *types.NfsExport) error
	GetExport(id string) (*types.NfsExport, error)
	ListExports() ([]*types.NfsExport, error)
	DeleteExport(id string) error

	// Utility
	Close() error
}
