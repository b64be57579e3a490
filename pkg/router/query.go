package router

import (
	"context"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
)

func validSearchKey(key string, keys []string) error {
	if key == "" {
		return nil
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return errdefs.Newf(errdefs.InvalidArgument, "unsupported search key %q", key)
}

// query answers a collection query. A system_id search returns whatever the
// owning connection lists, unfiltered; anything else fans out to every connection in
// activation order, skipping those that do not support the query.
func query[T types.Searchable](ctx context.Context, r *Router, op string, keys []string, searchKey, searchValue string, flags backend.Flags, list func(backend.Connection, context.Context, backend.Flags) ([]T, error)) ([]T, error) {
	if err := validSearchKey(searchKey, keys); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if searchKey == types.KeySystemID {
		c, ok := r.routes[searchValue]
		if !ok {
			return []T{}, nil
		}
		items, err := list(c.conn, ctx, flags)
		r.record(c, op, err)
		if err != nil {
			return nil, err
		}
		return items, nil
	}

	merged := make([]T, 0)
	for _, c := range r.conns {
		items, err := list(c.conn, ctx, flags)
		r.record(c, op, err)
		if err != nil {
			if errdefs.IsNoSupport(err) {
				continue
			}
			return nil, err
		}
		merged = append(merged, items...)
	}
	return types.Filter(merged, searchKey, searchValue), nil
}

// Systems returns every system discovered at registration, in activation order
func (r *Router) Systems(ctx context.Context, flags backend.Flags) (systems []*types.System, err error) {
	defer r.finish("systems", metrics.NewTimer(), &err)

	r.mu.RLock()
	defer r.mu.RUnlock()

	systems = make([]*types.System, len(r.systems))
	copy(systems, r.systems)
	return systems, nil
}

// Disks lists disks across all backends, optionally filtered
func (r *Router) Disks(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (disks []*types.Disk, err error) {
	defer r.finish("disks", metrics.NewTimer(), &err)
	return query(ctx, r, "disks", types.DiskSearchKeys, searchKey, searchValue, flags, backend.Connection.Disks)
}

// Pools lists pools across all backends, optionally filtered
func (r *Router) Pools(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (pools []*types.Pool, err error) {
	defer r.finish("pools", metrics.NewTimer(), &err)
	return query(ctx, r, "pools", types.PoolSearchKeys, searchKey, searchValue, flags, backend.Connection.Pools)
}

// Volumes lists volumes across all backends, optionally filtered
func (r *Router) Volumes(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (volumes []*types.Volume, err error) {
	defer r.finish("volumes", metrics.NewTimer(), &err)
	return query(ctx, r, "volumes", types.VolumeSearchKeys, searchKey, searchValue, flags, backend.Connection.Volumes)
}

// Batteries lists batteries across all backends, optionally filtered
func (r *Router) Batteries(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (batteries []*types.Battery, err error) {
	defer r.finish("batteries", metrics.NewTimer(), &err)
	return query(ctx, r, "batteries", types.BatterySearchKeys, searchKey, searchValue, flags, backend.Connection.Batteries)
}

// FileSystems lists file systems across all backends, optionally filtered
func (r *Router) FileSystems(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (fss []*types.FileSystem, err error) {
	defer r.finish("fs", metrics.NewTimer(), &err)
	return query(ctx, r, "fs", types.FileSystemSearchKeys, searchKey, searchValue, flags, backend.Connection.FileSystems)
}
