/*
Package types defines the storage objects exchanged between the router,
its backends, and callers.

Every object that a collection query can return (disks, pools, volumes,
batteries, file systems, NFS exports) carries the identifier of the system
that owns it, except exports which carry the owning file system. The router
uses that embedded system identifier to pick the backend connection that must
serve an operation on the object.

# Searching

Collection queries accept an optional (key, value) pair. Each kind declares
the keys it understands:

	Disk        id, system_id
	Pool        id, system_id
	Volume      id, system_id, pool_id
	Battery     id, system_id
	FileSystem  id, system_id, pool_id
	NfsExport   id, fs_id

Filter applies the pair to a merged result:

	vols = types.Filter(vols, types.KeyPoolID, "pool-1")

# Enumerations

Status values (SystemStatus, DiskStatus, PoolStatus, BatteryStatus) are bit
fields. RaidType, CachePolicy, and Capability keep the numeric values used on
the wire by existing storage-management clients so objects can be passed
through unchanged.
*/
package types
