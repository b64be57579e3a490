package router

import (
	"context"
	"errors"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
)

// fakeConn is a backend connection that counts every call
type fakeConn struct {
	backend.Unsupported

	id        backend.ID
	systems   []*types.System
	disks     []*types.Disk
	pools     []*types.Pool
	volumes   []*types.Volume
	batteries []*types.Battery
	fss       []*types.FileSystem
	exports   []*types.NfsExport

	errs       map[string]error
	panics     map[string]bool
	calls      map[string]int
	timeout    time.Duration
	lastExport *types.ExportRequest
	lastDisks  []*types.Disk
}

func newFakeConn(id backend.ID, systemIDs ...string) *fakeConn {
	f := &fakeConn{
		id:     id,
		errs:   make(map[string]error),
		panics: make(map[string]bool),
		calls:  make(map[string]int),
	}
	for _, sysID := range systemIDs {
		f.systems = append(f.systems, &types.System{ID: sysID, Name: string(id) + " " + sysID})
	}
	return f
}

func (f *fakeConn) hit(op string) error {
	f.calls[op]++
	if f.panics[op] {
		panic("fake " + op + " exploded")
	}
	return f.errs[op]
}

func (f *fakeConn) totalCalls() int {
	total := 0
	for op, n := range f.calls {
		if op != "systems" && op != "close" {
			total += n
		}
	}
	return total
}

func (f *fakeConn) Systems(context.Context, backend.Flags) ([]*types.System, error) {
	if err := f.hit("systems"); err != nil {
		return nil, err
	}
	return f.systems, nil
}

func (f *fakeConn) Disks(context.Context, backend.Flags) ([]*types.Disk, error) {
	if err := f.hit("disks"); err != nil {
		return nil, err
	}
	return f.disks, nil
}

func (f *fakeConn) Pools(context.Context, backend.Flags) ([]*types.Pool, error) {
	if err := f.hit("pools"); err != nil {
		return nil, err
	}
	return f.pools, nil
}

func (f *fakeConn) Volumes(context.Context, backend.Flags) ([]*types.Volume, error) {
	if err := f.hit("volumes"); err != nil {
		return nil, err
	}
	return f.volumes, nil
}

func (f *fakeConn) Batteries(context.Context, backend.Flags) ([]*types.Battery, error) {
	if err := f.hit("batteries"); err != nil {
		return nil, err
	}
	return f.batteries, nil
}

func (f *fakeConn) FileSystems(context.Context, backend.Flags) ([]*types.FileSystem, error) {
	if err := f.hit("fs"); err != nil {
		return nil, err
	}
	return f.fss, nil
}

func (f *fakeConn) Capabilities(_ context.Context, system *types.System, _ backend.Flags) (*types.Capabilities, error) {
	if err := f.hit("capabilities"); err != nil {
		return nil, err
	}
	return types.NewCapabilities(types.CapVolumes), nil
}

func (f *fakeConn) VolumeRaidCreate(_ context.Context, name string, raidType types.RaidType, disks []*types.Disk, stripSize uint32, _ backend.Flags) (*types.Volume, error) {
	if err := f.hit("volume_raid_create"); err != nil {
		return nil, err
	}
	f.lastDisks = disks
	return &types.Volume{ID: "new-" + name, Name: name, SystemID: disks[0].SystemID}, nil
}

func (f *fakeConn) VolumeDelete(_ context.Context, volume *types.Volume, _ backend.Flags) (string, error) {
	if err := f.hit("volume_delete"); err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeConn) VolumeWriteCachePolicyUpdate(context.Context, *types.Volume, types.CachePolicy, backend.Flags) error {
	return f.hit("volume_write_cache_policy_update")
}

func (f *fakeConn) Exports(_ context.Context, searchKey, searchValue string, _ backend.Flags) ([]*types.NfsExport, error) {
	if err := f.hit("exports"); err != nil {
		return nil, err
	}
	return types.Filter(f.exports, searchKey, searchValue), nil
}

func (f *fakeConn) ExportFS(_ context.Context, req *types.ExportRequest, _ backend.Flags) (*types.NfsExport, error) {
	if err := f.hit("export_fs"); err != nil {
		return nil, err
	}
	f.lastExport = req
	return &types.NfsExport{ID: "exp-1", FsID: req.FsID, ExportPath: req.ExportPath}, nil
}

func (f *fakeConn) ExportAuth(context.Context, backend.Flags) ([]string, error) {
	if err := f.hit("export_auth"); err != nil {
		return nil, err
	}
	return []string{"sys", "krb5"}, nil
}

func (f *fakeConn) TimeoutSet(_ context.Context, timeout time.Duration, _ backend.Flags) error {
	if err := f.hit("time_out_set"); err != nil {
		return err
	}
	f.timeout = timeout
	return nil
}

func (f *fakeConn) Close(context.Context, backend.Flags) error {
	return f.hit("close")
}

// fakeOpener hands out preconfigured connections by backend id
type fakeOpener struct {
	conns     map[backend.ID]*fakeConn
	openErrs  map[backend.ID]error
	openPanic map[backend.ID]bool
	targets   []string
	timeouts  []time.Duration
}

func newFakeOpener(conns ...*fakeConn) *fakeOpener {
	o := &fakeOpener{
		conns:     make(map[backend.ID]*fakeConn),
		openErrs:  make(map[backend.ID]error),
		openPanic: make(map[backend.ID]bool),
	}
	for _, c := range conns {
		o.conns[c.id] = c
	}
	return o
}

func (o *fakeOpener) Open(_ context.Context, target string, _ string, timeout time.Duration, _ backend.Flags) (backend.Connection, error) {
	o.targets = append(o.targets, target)
	o.timeouts = append(o.timeouts, timeout)

	t, err := backend.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if o.openPanic[t.Backend] {
		panic("fake open of " + string(t.Backend) + " exploded")
	}
	if err := o.openErrs[t.Backend]; err != nil {
		return nil, err
	}
	conn, ok := o.conns[t.Backend]
	if !ok {
		return nil, errdefs.Newf(errdefs.NoSupport, "no fake for %s", t.Backend)
	}
	return conn, nil
}

type fakeInventory struct {
	modules []string
	tools   map[string]bool
}

func (f *fakeInventory) Modules() ([]string, error) { return f.modules, nil }

func (f *fakeInventory) HasTool(name string) bool { return f.tools[name] }

// moduleFor maps backend ids to the kernel module that selects them
var moduleFor = map[backend.ID]string{
	backend.Megaraid: "megaraid_sas",
	backend.HPSA:     "hpsa",
	backend.Arcconf:  "aacraid",
	backend.NFS:      "nfsd",
}

// newTestRouter creates a privileged router whose host shows the modules
// for every given connection.
func newTestRouter(conns ...*fakeConn) (*Router, *fakeOpener) {
	modules := make([]string, 0, len(conns))
	for _, c := range conns {
		modules = append(modules, moduleFor[c.id])
	}
	opener := newFakeOpener(conns...)
	r := New(opener,
		WithSelector(discovery.NewSelector(discovery.DefaultCatalog(), &fakeInventory{modules: modules})),
		WithPrivilegeCheck(func() bool { return true }),
	)
	return r, opener
}

var errBoom = errors.New("boom")
