/*
Package router presents every storage backend active on the local host as a
single storage-management endpoint.

Register probes the host (or honours only=<id>), opens one connection per
selected backend and asks each for its systems. The resulting routing table
maps every system id to the connection that manages it:

	r := router.New(registry)
	if err := r.Register(ctx, "local://?ignore_init_error=true", "", 0, backend.FlagReserved); err != nil {
		return err
	}
	defer r.Close()

	disks, err := r.Disks(ctx, types.KeySystemID, "SV03403550", backend.FlagReserved)

# Routing

Collection queries (Disks, Pools, Volumes, Batteries, FileSystems) fan out to
every connection in activation order and skip connections that answer
NO_SUPPORT. A system_id search only asks the owning connection; an unknown
system id yields an empty list without contacting any backend.

Object operations (Capabilities, VolumeDelete, cache policy updates, RAID
queries) go to the owner of the operand's system id, or fail with
NOT_FOUND_SYSTEM. VolumeRaidCreate routes by the first disk.

NFS export operations go to the single export-capable connection, when one
was activated.

# Events

With WithEvents the router publishes backend activation, routing collisions
and every successful change (volume created or deleted, cache policy updated,
export created or removed) to an events.Broker. Failed calls publish nothing.

# Errors

Every public method returns either a *errdefs.Error or nil. Backend domain
errors pass through unchanged; anything else, including a panic inside a
backend, becomes PLUGIN_BUG with the original error in the message.
*/
package router
