package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketSystems     = []byte("systems")
	bucketDisks       = []byte("disks")
	bucketPools       = []byte("pools")
	bucketVolumes     = []byte("volumes")
	bucketBatteries   = []byte("batteries")
	bucketFileSystems = []byte("filesystems")
	bucketExports     = []byte("exports")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the state file at path. timeout bounds the
// wait for the file lock held by another open connection.
func NewBoltStore(path string, timeout time.Duration) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketSystems,
			bucketDisks,
			bucketPools,
			bucketVolumes,
			bucketBatteries,
			bucketFileSystems,
			bucketExports,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func put(tx *bolt.Tx, bucket []byte, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put([]byte(id), data)
}

func get[T any](tx *bolt.Tx, bucket []byte, id string, notFound errdefs.Code, kind string) (*T, error) {
	data := tx.Bucket(bucket).Get([]byte(id))
	if data == nil {
		return nil, errdefs.Newf(notFound, "%s not found: %s", kind, id)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](tx *bolt.Tx, bucket []byte) ([]*T, error) {
	var items []*T
	err := tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		items = append(items, &item)
		return nil
	})
	return items, err
}

// view runs a read-only lookup and returns its result
func view[T any](db *bolt.DB, fn func(tx *bolt.Tx) (T, error)) (T, error) {
	var out T
	err := db.View(func(tx *bolt.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}

// System operations
func (s *BoltStore) PutSystem(system *types.System) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketSystems, system.ID, system)
	})
}

func (s *BoltStore) ListSystems() ([]*types.System, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*types.System, error) {
		return list[types.System](tx, bucketSystems)
	})
}

// Disk operations
func (s *BoltStore) PutDisk(disk *types.Disk) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketDisks, disk.ID, disk)
	})
}

func (s *BoltStore) GetDisk(id string) (*types.Disk, error) {
	return view(s.db, func(tx *bolt.Tx) (*types.Disk, error) {
		return get[types.Disk](tx, bucketDisks, id, errdefs.NotFoundDisk, "disk")
	})
}

func (s *BoltStore) ListDisks() ([]*types.Disk, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*types.Disk, error) {
		return list[types.Disk](tx, bucketDisks)
	})
}

// Pool operations
func (s *BoltStore) PutPool(pool *PoolRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketPools, pool.Pool.ID, pool)
	})
}

func (s *BoltStore) GetPool(id string) (*PoolRecord, error) {
	return view(s.db, func(tx *bolt.Tx) (*PoolRecord, error) {
		return get[PoolRecord](tx, bucketPools, id, errdefs.NotFoundPool, "pool")
	})
}

func (s *BoltStore) ListPools() ([]*PoolRecord, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*PoolRecord, error) {
		return list[PoolRecord](tx, bucketPools)
	})
}

// Volume operations
func (s *BoltStore) PutVolume(volume *VolumeRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketVolumes, volume.Volume.ID, volume)
	})
}

func (s *BoltStore) GetVolume(id string) (*VolumeRecord, error) {
	return view(s.db, func(tx *bolt.Tx) (*VolumeRecord, error) {
		return get[VolumeRecord](tx, bucketVolumes, id, errdefs.NotFoundVolume, "volume")
	})
}

func (s *BoltStore) ListVolumes() ([]*VolumeRecord, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*VolumeRecord, error) {
		return list[VolumeRecord](tx, bucketVolumes)
	})
}

func (s *BoltStore) CreateRaidVolume(pool *PoolRecord, volume *VolumeRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, id := range pool.Members.MemberIDs {
			disk, err := get[types.Disk](tx, bucketDisks, id, errdefs.NotFoundDisk, "disk")
			if err != nil {
				return err
			}
			if disk.Status&types.DiskStatusFree == 0 {
				return errdefs.Newf(errdefs.InvalidArgument, "disk %s is not free", id)
			}
			disk.Status = types.DiskStatusOK
			if err := put(tx, bucketDisks, disk.ID, disk); err != nil {
				return err
			}
		}
		if err := put(tx, bucketPools, pool.Pool.ID, pool); err != nil {
			return err
		}
		return put(tx, bucketVolumes, volume.Volume.ID, volume)
	})
}

func (s *BoltStore) DeleteRaidVolume(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		volume, err := get[VolumeRecord](tx, bucketVolumes, id, errdefs.NotFoundVolume, "volume")
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketVolumes).Delete([]byte(id)); err != nil {
			return err
		}

		remaining, err := list[VolumeRecord](tx, bucketVolumes)
		if err != nil {
			return err
		}
		for _, v := range remaining {
			if v.Volume.PoolID == volume.Volume.PoolID {
				return nil
			}
		}

		pool, err := get[PoolRecord](tx, bucketPools, volume.Volume.PoolID, errdefs.NotFoundPool, "pool")
		if err != nil {
			return err
		}
		for _, diskID := range pool.Members.MemberIDs {
			disk, err := get[types.Disk](tx, bucketDisks, diskID, errdefs.NotFoundDisk, "disk")
			if err != nil {
				return err
			}
			disk.Status = types.DiskStatusFree
			if err := put(tx, bucketDisks, disk.ID, disk); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketPools).Delete([]byte(pool.Pool.ID))
	})
}

// Battery operations
func (s *BoltStore) PutBattery(battery *types.Battery) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketBatteries, battery.ID, battery)
	})
}

func (s *BoltStore) ListBatteries() ([]*types.Battery, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*types.Battery, error) {
		return list[types.Battery](tx, bucketBatteries)
	})
}

// File system operations
func (s *BoltStore) PutFileSystem(fs *types.FileSystem) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketFileSystems, fs.ID, fs)
	})
}

func (s *BoltStore) GetFileSystem(id string) (*types.FileSystem, error) {
	return view(s.db, func(tx *bolt.Tx) (*types.FileSystem, error) {
		return get[types.FileSystem](tx, bucketFileSystems, id, errdefs.NotFoundFS, "file system")
	})
}

func (s *BoltStore) ListFileSystems() ([]*types.FileSystem, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*types.FileSystem, error) {
		return list[types.FileSystem](tx, bucketFileSystems)
	})
}

// Export operations
func (s *BoltStore) PutExport(export *types.NfsExport) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx, bucketExports, export.ID, export)
	})
}

func (s *BoltStore) GetExport(id string) (*types.NfsExport, error) {
	return view(s.db, func(tx *bolt.Tx) (*types.NfsExport, error) {
		return get[types.NfsExport](tx, bucketExports, id, errdefs.NotFoundNFSExport, "export")
	})
}

func (s *BoltStore) ListExports() ([]*types.NfsExport, error) {
	return view(s.db, func(tx *bolt.Tx) ([]*types.NfsExport, error) {
		return list[types.NfsExport](tx, bucketExports)
	})
}

func (s *BoltStore) DeleteExport(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketExports)
		if b.Get([]byte(id)) == nil {
			return errdefs.Newf(errdefs.NotFoundNFSExport, "export not found: %s", id)
		}
		return b.Delete([]byte(id))
	})
}
