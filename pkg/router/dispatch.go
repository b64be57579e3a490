package router

import (
	"context"
	"strconv"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
)

// owner returns the connection that manages systemID. Callers hold r.mu.
func (r *Router) owner(systemID string) (*connection, error) {
	c, ok := r.routes[systemID]
	if !ok {
		return nil, errdefs.New(errdefs.NotFoundSystem, "System not found")
	}
	return c, nil
}

// dispatch runs fn against the owner of systemID and records the call
func dispatch(r *Router, op, systemID string, fn func(c *connection) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.owner(systemID)
	if err != nil {
		return err
	}
	err = fn(c)
	r.record(c, op, err)
	return err
}

// Capabilities returns the capabilities of a system
func (r *Router) Capabilities(ctx context.Context, system *types.System, flags backend.Flags) (caps *types.Capabilities, err error) {
	defer r.finish("capabilities", metrics.NewTimer(), &err)
	if err := requireOperand("system", system == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "capabilities", system.ID, func(c *connection) (err error) {
		caps, err = c.conn.Capabilities(ctx, system, flags)
		return err
	})
	return caps, err
}

// VolumeRaidInfo returns the RAID layout behind a volume
func (r *Router) VolumeRaidInfo(ctx context.Context, volume *types.Volume, flags backend.Flags) (info *types.VolumeRaidInfo, err error) {
	defer r.finish("volume_raid_info", metrics.NewTimer(), &err)
	if err := requireOperand("volume", volume == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "volume_raid_info", volume.SystemID, func(c *connection) (err error) {
		info, err = c.conn.VolumeRaidInfo(ctx, volume, flags)
		return err
	})
	return info, err
}

// PoolMemberInfo returns the members of a pool
func (r *Router) PoolMemberInfo(ctx context.Context, pool *types.Pool, flags backend.Flags) (info *types.PoolMemberInfo, err error) {
	defer r.finish("pool_member_info", metrics.NewTimer(), &err)
	if err := requireOperand("pool", pool == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "pool_member_info", pool.SystemID, func(c *connection) (err error) {
		info, err = c.conn.PoolMemberInfo(ctx, pool, flags)
		return err
	})
	return info, err
}

// VolumeRaidCreateCapGet returns the RAID levels and strip sizes a system accepts
func (r *Router) VolumeRaidCreateCapGet(ctx context.Context, system *types.System, flags backend.Flags) (raidCap *types.RaidCreateCap, err error) {
	defer r.finish("volume_raid_create_cap_get", metrics.NewTimer(), &err)
	if err := requireOperand("system", system == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "volume_raid_create_cap_get", system.ID, func(c *connection) (err error) {
		raidCap, err = c.conn.VolumeRaidCreateCapGet(ctx, system, flags)
		return err
	})
	return raidCap, err
}

// VolumeRaidCreate builds a RAID volume from disks. The target system is the
// one owning the first disk.
func (r *Router) VolumeRaidCreate(ctx context.Context, name string, raidType types.RaidType, disks []*types.Disk, stripSize uint32, flags backend.Flags) (volume *types.Volume, err error) {
	defer r.finish("volume_raid_create", metrics.NewTimer(), &err)
	if len(disks) == 0 {
		return nil, errdefs.New(errdefs.InvalidArgument, "No disk defined")
	}
	if err := requireOperand("disk", disks[0] == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "volume_raid_create", disks[0].SystemID, func(c *connection) (err error) {
		volume, err = c.conn.VolumeRaidCreate(ctx, name, raidType, disks, stripSize, flags)
		if err == nil && volume != nil {
			r.publish(events.EventVolumeCreated, c, volume.SystemID, "volume "+volume.Name+" created",
				map[string]string{"volume_id": volume.ID, "pool_id": volume.PoolID, "raid_type": strconv.Itoa(int(raidType))})
		}
		return err
	})
	return volume, err
}

// VolumeCacheInfo returns cache settings and status of a volume
func (r *Router) VolumeCacheInfo(ctx context.Context, volume *types.Volume, flags backend.Flags) (info *types.VolumeCacheInfo, err error) {
	defer r.finish("volume_cache_info", metrics.NewTimer(), &err)
	if err := requireOperand("volume", volume == nil); err != nil {
		return nil, err
	}

	err = dispatch(r, "volume_cache_info", volume.SystemID, func(c *connection) (err error) {
		info, err = c.conn.VolumeCacheInfo(ctx, volume, flags)
		return err
	})
	return info, err
}

// updateCache forwards one cache policy change to the owner of volume
func (r *Router) updateCache(op, setting string, volume *types.Volume, policy types.CachePolicy, update func(backend.Connection) error) error {
	if err := requireOperand("volume", volume == nil); err != nil {
		return err
	}

	return dispatch(r, op, volume.SystemID, func(c *connection) error {
		if err := update(c.conn); err != nil {
			return err
		}
		r.publish(events.EventVolumeCacheUpdated, c, volume.SystemID, setting+" cache policy updated",
			map[string]string{"volume_id": volume.ID, "setting": setting, "policy": strconv.Itoa(int(policy))})
		return nil
	})
}

// VolumePhysicalDiskCacheUpdate changes the disk cache policy of a volume
func (r *Router) VolumePhysicalDiskCacheUpdate(ctx context.Context, volume *types.Volume, pdc types.CachePolicy, flags backend.Flags) (err error) {
	defer r.finish("volume_physical_disk_cache_update", metrics.NewTimer(), &err)

	return r.updateCache("volume_physical_disk_cache_update", "physical disk", volume, pdc, func(conn backend.Connection) error {
		return conn.VolumePhysicalDiskCacheUpdate(ctx, volume, pdc, flags)
	})
}

// VolumeWriteCachePolicyUpdate changes the write cache policy of a volume
func (r *Router) VolumeWriteCachePolicyUpdate(ctx context.Context, volume *types.Volume, wcp types.CachePolicy, flags backend.Flags) (err error) {
	defer r.finish("volume_write_cache_policy_update", metrics.NewTimer(), &err)

	return r.updateCache("volume_write_cache_policy_update", "write", volume, wcp, func(conn backend.Connection) error {
		return conn.VolumeWriteCachePolicyUpdate(ctx, volume, wcp, flags)
	})
}

// VolumeReadCachePolicyUpdate changes the read cache policy of a volume
func (r *Router) VolumeReadCachePolicyUpdate(ctx context.Context, volume *types.Volume, rcp types.CachePolicy, flags backend.Flags) (err error) {
	defer r.finish("volume_read_cache_policy_update", metrics.NewTimer(), &err)

	return r.updateCache("volume_read_cache_policy_update", "read", volume, rcp, func(conn backend.Connection) error {
		return conn.VolumeReadCachePolicyUpdate(ctx, volume, rcp, flags)
	})
}

// VolumeDelete deletes a volume, returning a job id if the backend runs it asynchronously
func (r *Router) VolumeDelete(ctx context.Context, volume *types.Volume, flags backend.Flags) (jobID string, err error) {
	defer r.finish("volume_delete", metrics.NewTimer(), &err)
	if err := requireOperand("volume", volume == nil); err != nil {
		return "", err
	}

	err = dispatch(r, "volume_delete", volume.SystemID, func(c *connection) (err error) {
		jobID, err = c.conn.VolumeDelete(ctx, volume, flags)
		if err == nil {
			r.publish(events.EventVolumeDeleted, c, volume.SystemID, "volume "+volume.Name+" deleted",
				map[string]string{"volume_id": volume.ID, "job_id": jobID})
		}
		return err
	})
	return jobID, err
}
