/*
Package sim implements a simulated storage backend on top of BoltDB.

Each connection owns one state file holding a single system. Controller kinds
(megaraid, hpsa, arcconf) start with six free SAS disks, a mirrored "os"
volume built from two of them and a cache backup capacitor. The nfs kind
starts with one file system and one read-only export.

The simulator understands these target parameters:

	db=<path>        state file, default <data-dir>/<backend>.db
	fail=<bool>      make Open fail
	tmo_max=<ms>     reject larger timeouts in TimeoutSet
	system=<id>      system id of a fresh state file

It is registered into a backend.Registry with RegisterAll:

	reg := backend.NewRegistry()
	sim.RegisterAll(reg, dataDir, backend.Megaraid, backend.NFS)
	r := router.New(reg)
*/
package sim
