package sim

import (
	"context"
	"path"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/rs/zerolog"
)

// nfsAuthTypes are the export security flavours the file server accepts
var nfsAuthTypes = []string{"sys", "krb5", "krb5i", "krb5p"}

// Conn is a simulated backend connection. RAID controller kinds manage
// disks and volumes; the nfs kind manages file systems and exports.
type Conn struct {
	id       backend.ID
	store    Store
	systemID string
	timeout  time.Duration
	tmoMax   time.Duration
	logger   zerolog.Logger
}

var _ backend.Connection = (*Conn)(nil)

// SystemID returns the id of the single system behind the connection
func (c *Conn) SystemID() string {
	return c.systemID
}

func (c *Conn) fileServer() bool {
	return c.id.ExportCapable()
}

func (c *Conn) unsupported(op string) error {
	return errdefs.Newf(errdefs.NoSupport, "%s is not supported by %s", op, c.id)
}

func (c *Conn) requireController(op string) error {
	if c.fileServer() {
		return c.unsupported(op)
	}
	return nil
}

func (c *Conn) requireFileServer(op string) error {
	if !c.fileServer() {
		return c.unsupported(op)
	}
	return nil
}

func (c *Conn) Systems(ctx context.Context, flags backend.Flags) ([]*types.System, error) {
	return c.store.ListSystems()
}

func (c *Conn) Disks(ctx context.Context, flags backend.Flags) ([]*types.Disk, error) {
	if err := c.requireController("disks"); err != nil {
		return nil, err
	}
	return c.store.ListDisks()
}

func (c *Conn) Pools(ctx context.Context, flags backend.Flags) ([]*types.Pool, error) {
	records, err := c.store.ListPools()
	if err != nil {
		return nil, err
	}
	pools := make([]*types.Pool, 0, len(records))
	for _, r := range records {
		pool := r.Pool
		pools = append(pools, &pool)
	}
	return pools, nil
}

func (c *Conn) Volumes(ctx context.Context, flags backend.Flags) ([]*types.Volume, error) {
	if err := c.requireController("volumes"); err != nil {
		return nil, err
	}
	records, err := c.store.ListVolumes()
	if err != nil {
		return nil, err
	}
	volumes := make([]*types.Volume, 0, len(records))
	for _, r := range records {
		volume := r.Volume
		volumes = append(volumes, &volume)
	}
	return volumes, nil
}

func (c *Conn) Batteries(ctx context.Context, flags backend.Flags) ([]*types.Battery, error) {
	if err := c.requireController("batteries"); err != nil {
		return nil, err
	}
	return c.store.ListBatteries()
}

func (c *Conn) FileSystems(ctx context.Context, flags backend.Flags) ([]*types.FileSystem, error) {
	if err := c.requireFileServer("fs"); err != nil {
		return nil, err
	}
	return c.store.ListFileSystems()
}

// Capabilities reports what the simulated system supports
func (c *Conn) Capabilities(ctx context.Context, system *types.System, flags backend.Flags) (*types.Capabilities, error) {
	if system.ID != c.systemID {
		return nil, errdefs.New(errdefs.NotFoundSystem, "System not found")
	}

	if c.fileServer() {
		return types.NewCapabilities(
			types.CapFS,
			types.CapExportAuth,
			types.CapExports,
			types.CapExportFS,
			types.CapExportRemove,
			types.CapExportCustomPath,
		), nil
	}

	return types.NewCapabilities(
		types.CapVolumes,
		types.CapVolumeDelete,
		types.CapSysReadCachePctGet,
		types.CapSysFwVersionGet,
		types.CapSysModeGet,
		types.CapDiskLocation,
		types.CapDiskRPM,
		types.CapDiskLinkType,
		types.CapDiskVPD83Get,
		types.CapVolumeRaidInfo,
		types.CapPoolMemberInfo,
		types.CapVolumeRaidCreate,
		types.CapBatteries,
		types.CapVolumeCacheInfo,
		types.CapVolumePhysicalDiskCacheUpdate,
		types.CapVolumeWriteCacheWBAuto,
		types.CapVolumeWriteCacheWB,
		types.CapVolumeWriteCacheWT,
		types.CapVolumeReadCacheUpdate,
	), nil
}

func (c *Conn) VolumeRaidInfo(ctx context.Context, volume *types.Volume, flags backend.Flags) (*types.VolumeRaidInfo, error) {
	if err := c.requireController("volume_raid_info"); err != nil {
		return nil, err
	}
	rec, err := c.store.GetVolume(volume.ID)
	if err != nil {
		return nil, err
	}
	return &rec.Raid, nil
}

func (c *Conn) PoolMemberInfo(ctx context.Context, pool *types.Pool, flags backend.Flags) (*types.PoolMemberInfo, error) {
	rec, err := c.store.GetPool(pool.ID)
	if err != nil {
		return nil, err
	}
	return &rec.Members, nil
}

func raidCreateCap() *types.RaidCreateCap {
	return &types.RaidCreateCap{
		RaidTypes: []types.RaidType{
			types.RaidType0,
			types.RaidType1,
			types.RaidType5,
			types.RaidType6,
			types.RaidType10,
		},
		StripSizes: []uint32{64 * 1024, 128 * 1024, 256 * 1024, 512 * 1024, 1024 * 1024},
	}
}

func (c *Conn) VolumeRaidCreateCapGet(ctx context.Context, system *types.System, flags backend.Flags) (*types.RaidCreateCap, error) {
	if err := c.requireController("volume_raid_create_cap_get"); err != nil {
		return nil, err
	}
	if system.ID != c.systemID {
		return nil, errdefs.New(errdefs.NotFoundSystem, "System not found")
	}
	return raidCreateCap(), nil
}

// VolumeRaidCreate builds a disk group from free disks and one volume
// spanning it. A zero stripSize picks the controller default.
func (c *Conn) VolumeRaidCreate(ctx context.Context, name string, raidType types.RaidType, disks []*types.Disk, stripSize uint32, flags backend.Flags) (*types.Volume, error) {
	if err := c.requireController("volume_raid_create"); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errdefs.New(errdefs.InvalidArgument, "volume name is required")
	}

	raidCap := raidCreateCap()
	if !raidCap.SupportsRaidType(raidType) {
		return nil, errdefs.Newf(errdefs.NoSupport, "RAID type %d is not supported", raidType)
	}
	if stripSize == 0 {
		stripSize = defaultStripSize
	} else if !raidCap.SupportsStripSize(stripSize) {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "strip size %d is not supported", stripSize)
	}
	if need := raidType.MinDisks(); len(disks) < need {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "RAID %d requires at least %d disks", raidType, need)
	}
	if (raidType == types.RaidType1 || raidType == types.RaidType10) && len(disks)%2 != 0 {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "RAID %d requires an even number of disks", raidType)
	}

	seen := make(map[string]bool, len(disks))
	members := make([]*types.Disk, 0, len(disks))
	for _, d := range disks {
		if d.SystemID != c.systemID {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "disk %s belongs to system %s", d.ID, d.SystemID)
		}
		if seen[d.ID] {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "disk %s listed twice", d.ID)
		}
		seen[d.ID] = true

		stored, err := c.store.GetDisk(d.ID)
		if err != nil {
			return nil, err
		}
		members = append(members, stored)
	}

	protected, err := c.cacheProtected()
	if err != nil {
		return nil, err
	}
	pool, rec := newRaidVolume(c.systemID, name, raidType, stripSize, members, protected)
	if err := c.store.CreateRaidVolume(pool, rec); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("volume_id", rec.Volume.ID).
		Int("raid_type", int(raidType)).
		Int("disks", len(members)).
		Msg("volume created")

	volume := rec.Volume
	return &volume, nil
}

// cacheProtected reports whether a healthy battery backs the write cache
func (c *Conn) cacheProtected() (bool, error) {
	batteries, err := c.store.ListBatteries()
	if err != nil {
		return false, err
	}
	for _, b := range batteries {
		if b.Status&types.BatteryStatusOK != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (c *Conn) VolumeCacheInfo(ctx context.Context, volume *types.Volume, flags backend.Flags) (*types.VolumeCacheInfo, error) {
	if err := c.requireController("volume_cache_info"); err != nil {
		return nil, err
	}
	rec, err := c.store.GetVolume(volume.ID)
	if err != nil {
		return nil, err
	}
	return &rec.Cache, nil
}

// updateCache applies fn to the stored cache state of volume
func (c *Conn) updateCache(op string, volume *types.Volume, fn func(cache *types.VolumeCacheInfo) error) error {
	if err := c.requireController(op); err != nil {
		return err
	}
	rec, err := c.store.GetVolume(volume.ID)
	if err != nil {
		return err
	}
	if err := fn(&rec.Cache); err != nil {
		return err
	}
	return c.store.PutVolume(rec)
}

func invalidPolicy(policy types.CachePolicy) error {
	return errdefs.Newf(errdefs.InvalidArgument, "unsupported cache policy %d", policy)
}

func (c *Conn) VolumePhysicalDiskCacheUpdate(ctx context.Context, volume *types.Volume, pdc types.CachePolicy, flags backend.Flags) error {
	return c.updateCache("volume_physical_disk_cache_update", volume, func(cache *types.VolumeCacheInfo) error {
		switch pdc {
		case types.CacheEnabled, types.CacheDisabled, types.CacheUseDiskSetting:
			cache.PhysicalDiskCacheStatus = pdc
			return nil
		}
		return invalidPolicy(pdc)
	})
}

func (c *Conn) VolumeWriteCachePolicyUpdate(ctx context.Context, volume *types.Volume, wcp types.CachePolicy, flags backend.Flags) error {
	protected, err := c.cacheProtected()
	if err != nil {
		return err
	}
	return c.updateCache("volume_write_cache_policy_update", volume, func(cache *types.VolumeCacheInfo) error {
		switch wcp {
		case types.CacheWriteBack, types.CacheWriteThrough:
			cache.WriteCacheStatus = wcp
		case types.CacheAuto:
			cache.WriteCacheStatus = types.CacheWriteThrough
			if protected {
				cache.WriteCacheStatus = types.CacheWriteBack
			}
		default:
			return invalidPolicy(wcp)
		}
		cache.WriteCacheSetting = wcp
		return nil
	})
}

func (c *Conn) VolumeReadCachePolicyUpdate(ctx context.Context, volume *types.Volume, rcp types.CachePolicy, flags backend.Flags) error {
	return c.updateCache("volume_read_cache_policy_update", volume, func(cache *types.VolumeCacheInfo) error {
		if rcp != types.CacheEnabled && rcp != types.CacheDisabled {
			return invalidPolicy(rcp)
		}
		cache.ReadCacheSetting = rcp
		cache.ReadCacheStatus = rcp
		return nil
	})
}

// VolumeDelete completes synchronously and never returns a job id
func (c *Conn) VolumeDelete(ctx context.Context, volume *types.Volume, flags backend.Flags) (string, error) {
	if err := c.requireController("volume_delete"); err != nil {
		return "", err
	}
	if err := c.store.DeleteRaidVolume(volume.ID); err != nil {
		return "", err
	}
	c.logger.Info().Str("volume_id", volume.ID).Msg("volume deleted")
	return "", nil
}

func (c *Conn) Exports(ctx context.Context, searchKey, searchValue string, flags backend.Flags) ([]*types.NfsExport, error) {
	if err := c.requireFileServer("exports"); err != nil {
		return nil, err
	}
	exports, err := c.store.ListExports()
	if err != nil {
		return nil, err
	}
	return types.Filter(exports, searchKey, searchValue), nil
}

// ExportFS exports a file system. An empty export path defaults to the file
// system name.
func (c *Conn) ExportFS(ctx context.Context, req *types.ExportRequest, flags backend.Flags) (*types.NfsExport, error) {
	if err := c.requireFileServer("export_fs"); err != nil {
		return nil, err
	}

	fs, err := c.store.GetFileSystem(req.FsID)
	if err != nil {
		return nil, err
	}

	exportPath := req.ExportPath
	if exportPath == "" {
		exportPath = fs.Name
	}
	if !path.IsAbs(exportPath) {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "export path %q is not absolute", exportPath)
	}
	if len(req.RWList) == 0 && len(req.ROList) == 0 {
		return nil, errdefs.New(errdefs.InvalidArgument, "at least one host must be listed in rw_list or ro_list")
	}

	auth := req.AuthType
	if auth == "" {
		auth = nfsAuthTypes[0]
	}
	if !contains(nfsAuthTypes, auth) {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "unsupported auth type %q", auth)
	}

	existing, err := c.store.ListExports()
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.ExportPath == exportPath {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "export path %s is already exported", exportPath)
		}
	}

	export := &types.NfsExport{
		ID:         newID(),
		FsID:       fs.ID,
		ExportPath: exportPath,
		Auth:       auth,
		Root:       req.RootList,
		RW:         req.RWList,
		RO:         req.ROList,
		AnonUID:    req.AnonUID,
		AnonGID:    req.AnonGID,
		Options:    req.Options,
	}
	if err := c.store.PutExport(export); err != nil {
		return nil, err
	}

	c.logger.Info().Str("export_path", exportPath).Str("fs_id", fs.ID).Msg("file system exported")
	return export, nil
}

func (c *Conn) ExportRemove(ctx context.Context, export *types.NfsExport, flags backend.Flags) error {
	if err := c.requireFileServer("export_remove"); err != nil {
		return err
	}
	if err := c.store.DeleteExport(export.ID); err != nil {
		return err
	}
	c.logger.Info().Str("export_id", export.ID).Msg("export removed")
	return nil
}

func (c *Conn) ExportAuth(ctx context.Context, flags backend.Flags) ([]string, error) {
	if err := c.requireFileServer("export_auth"); err != nil {
		return nil, err
	}
	auth := make([]string, len(nfsAuthTypes))
	copy(auth, nfsAuthTypes)
	return auth, nil
}

// TimeoutSet rejects timeouts above the tmo_max target parameter
func (c *Conn) TimeoutSet(ctx context.Context, timeout time.Duration, flags backend.Flags) error {
	if c.tmoMax > 0 && timeout > c.tmoMax {
		return errdefs.Newf(errdefs.InvalidArgument, "timeout %s exceeds the maximum of %s", timeout, c.tmoMax)
	}
	c.timeout = timeout
	return nil
}

// Timeout returns the timeout last accepted by TimeoutSet
func (c *Conn) Timeout() time.Duration {
	return c.timeout
}

func (c *Conn) Close(ctx context.Context, flags backend.Flags) error {
	return c.store.Close()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
