package sim

import (
	"fmt"
	"strings"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/google/uuid"
)

const (
	diskBlockSize    = 512
	diskBlocks       = 1953525168 // 1 TB
	seedDiskCount    = 6
	defaultStripSize = 64 * 1024

	fsTotalSpace = 1 << 40
	fsFreeSpace  = 600 << 30
)

func newID() string {
	return uuid.New().String()
}

// vpd83 derives an NAA type 6 identifier from a fresh uuid
func vpd83() string {
	return "6" + strings.ReplaceAll(newID(), "-", "")[1:]
}

// defaultSystemID names the single system of a fresh state file
func defaultSystemID(id backend.ID) string {
	return fmt.Sprintf("SIM-%s-%s", strings.ToUpper(string(id)), strings.ToUpper(newID()[:8]))
}

// seed populates an empty store and returns the id of its system. A store
// that already holds a system is left untouched.
func seed(store Store, id backend.ID, systemID string) (string, error) {
	systems, err := store.ListSystems()
	if err != nil {
		return "", err
	}
	if len(systems) > 0 {
		return systems[0].ID, nil
	}

	if systemID == "" {
		systemID = defaultSystemID(id)
	}
	if id.ExportCapable() {
		return systemID, seedFileServer(store, systemID)
	}
	return systemID, seedController(store, id, systemID)
}

func seedController(store Store, id backend.ID, systemID string) error {
	system := &types.System{
		ID:           systemID,
		Name:         fmt.Sprintf("Simulated %s controller", id),
		Status:       types.SystemStatusOK,
		FwVersion:    "4.680.00-8527",
		ReadCachePct: 50,
		Mode:         types.SystemModeHardwareRAID,
	}
	if err := store.PutSystem(system); err != nil {
		return err
	}

	disks := make([]*types.Disk, 0, seedDiskCount)
	for i := 0; i < seedDiskCount; i++ {
		disk := &types.Disk{
			ID:          newID(),
			Name:        fmt.Sprintf("Disk %d", i),
			DiskType:    types.DiskTypeSAS,
			BlockSize:   diskBlockSize,
			NumOfBlocks: diskBlocks,
			Status:      types.DiskStatusFree,
			SystemID:    systemID,
			VPD83:       vpd83(),
			Location:    fmt.Sprintf("Port: 0 Box: 1 Bay: %d", i+1),
			RPM:         10000,
			LinkType:    types.DiskLinkSAS,
		}
		if err := store.PutDisk(disk); err != nil {
			return err
		}
		disks = append(disks, disk)
	}

	battery := &types.Battery{
		ID:       newID(),
		Name:     "Cache backup capacitor",
		Type:     types.BatteryTypeCapacitor,
		Status:   types.BatteryStatusOK,
		SystemID: systemID,
	}
	if err := store.PutBattery(battery); err != nil {
		return err
	}

	pool, volume := newRaidVolume(systemID, "os", types.RaidType1, defaultStripSize, disks[:2], true)
	return store.CreateRaidVolume(pool, volume)
}

func seedFileServer(store Store, systemID string) error {
	system := &types.System{
		ID:           systemID,
		Name:         "Simulated NFS server",
		Status:       types.SystemStatusOK,
		ReadCachePct: types.ReadCachePctNoSupport,
		Mode:         types.SystemModeNoSupport,
	}
	if err := store.PutSystem(system); err != nil {
		return err
	}

	pool := &PoolRecord{
		Pool: types.Pool{
			ID:          newID(),
			Name:        "/srv",
			ElementType: types.PoolElementFS,
			TotalSpace:  fsTotalSpace,
			FreeSpace:   fsFreeSpace,
			Status:      types.PoolStatusOK,
			SystemID:    systemID,
		},
		Members: types.PoolMemberInfo{RaidType: types.RaidTypeUnknown, MemberType: types.PoolMemberOther},
	}
	if err := store.PutPool(pool); err != nil {
		return err
	}

	fs := &types.FileSystem{
		ID:         newID(),
		Name:       "/srv/share",
		TotalSpace: fsTotalSpace,
		FreeSpace:  fsFreeSpace,
		PoolID:     pool.Pool.ID,
		SystemID:   systemID,
	}
	if err := store.PutFileSystem(fs); err != nil {
		return err
	}

	return store.PutExport(&types.NfsExport{
		ID:         newID(),
		FsID:       fs.ID,
		ExportPath: fs.Name,
		Auth:       "sys",
		RO:         []string{"*"},
		AnonUID:    types.AnonIDNotApplicable,
		AnonGID:    types.AnonIDNotApplicable,
		Options:    "sync",
	})
}

// dataDisks returns how many members of a RAID group hold data
func dataDisks(raidType types.RaidType, count int) int {
	switch raidType {
	case types.RaidType1, types.RaidType10:
		return count / 2
	case types.RaidType5:
		return count - 1
	case types.RaidType6:
		return count - 2
	default:
		return count
	}
}

// newRaidVolume lays out a disk group spanning disks and a single volume
// filling it
func newRaidVolume(systemID, name string, raidType types.RaidType, stripSize uint32, disks []*types.Disk, cacheProtected bool) (*PoolRecord, *VolumeRecord) {
	ids := make([]string, 0, len(disks))
	smallest := disks[0].NumOfBlocks
	for _, d := range disks {
		ids = append(ids, d.ID)
		if d.NumOfBlocks < smallest {
			smallest = d.NumOfBlocks
		}
	}
	data := dataDisks(raidType, len(disks))
	blocks := smallest * uint64(data)

	pool := &PoolRecord{
		Pool: types.Pool{
			ID:          newID(),
			Name:        "DG " + name,
			ElementType: types.PoolElementVolume,
			TotalSpace:  blocks * diskBlockSize,
			Status:      types.PoolStatusOK,
			SystemID:    systemID,
		},
		Members: types.PoolMemberInfo{
			RaidType:   raidType,
			MemberType: types.PoolMemberDisk,
			MemberIDs:  ids,
		},
	}

	writeStatus := types.CacheWriteThrough
	if cacheProtected {
		writeStatus = types.CacheWriteBack
	}
	volume := &VolumeRecord{
		Volume: types.Volume{
			ID:          newID(),
			Name:        name,
			VPD83:       vpd83(),
			BlockSize:   diskBlockSize,
			NumOfBlocks: blocks,
			AdminState:  types.VolumeAdminEnabled,
			SystemID:    systemID,
			PoolID:      pool.Pool.ID,
		},
		Raid: types.VolumeRaidInfo{
			RaidType:  raidType,
			StripSize: stripSize,
			DiskCount: len(disks),
			MinIOSize: stripSize,
			OptIOSize: stripSize * uint32(data),
		},
		Cache: types.VolumeCacheInfo{
			WriteCacheSetting:       types.CacheAuto,
			WriteCacheStatus:        writeStatus,
			ReadCacheSetting:        types.CacheEnabled,
			ReadCacheStatus:         types.CacheEnabled,
			PhysicalDiskCacheStatus: types.CacheUseDiskSetting,
		},
	}
	return pool, volume
}
