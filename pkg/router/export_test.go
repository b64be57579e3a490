package router

import (
	"context"
	"testing"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportsWithoutNFS(t *testing.T) {
	r, _, _ := registeredWithDisks(t)
	ctx := context.Background()
	req := types.NewExportRequest("fs1", "/export/fs1")

	_, err := r.ExportFS(ctx, req, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)
	assert.Contains(t, err.Error(), "NFS plugin is not loaded")

	_, err = r.Exports(ctx, "", "", backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	err = r.ExportRemove(ctx, &types.NfsExport{ID: "exp-1"}, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	_, err = r.ExportAuth(ctx, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)
}

func registeredWithNFS(t *testing.T) (*Router, *fakeConn, *fakeConn) {
	t.Helper()

	mr := newFakeConn(backend.Megaraid, "SV0001")
	nfs := newFakeConn(backend.NFS, "nfs")
	nfs.exports = []*types.NfsExport{
		{ID: "exp-1", FsID: "fs1", ExportPath: "/export/fs1"},
		{ID: "exp-2", FsID: "fs2", ExportPath: "/export/fs2"},
	}

	r, _ := newTestRouter(mr, nfs)
	require.NoError(t, r.Register(context.Background(), "", "", 0, backend.FlagReserved))
	t.Cleanup(func() { r.Close() })
	return r, mr, nfs
}

func TestExportFSForwardsVerbatim(t *testing.T) {
	r, mr, nfs := registeredWithNFS(t)
	req := types.NewExportRequest("fs1", "/export/fs1")
	req.RootList = []string{"10.0.0.1"}
	req.RWList = []string{"10.0.0.0/24"}
	req.AuthType = "sys"

	export, err := r.ExportFS(context.Background(), req, backend.FlagReserved)
	require.NoError(t, err)
	assert.Same(t, req, nfs.lastExport)
	assert.Equal(t, "fs1", export.FsID)
	assert.Zero(t, mr.totalCalls())
}

func TestExportFSForwardsBackendError(t *testing.T) {
	r, _, nfs := registeredWithNFS(t)
	want := errdefs.New(errdefs.InvalidArgument, "export path already in use")
	nfs.errs["export_fs"] = want

	_, err := r.ExportFS(context.Background(), types.NewExportRequest("fs1", "/export/fs1"), backend.FlagReserved)
	assert.Equal(t, want, err)
}

func TestExportsFilter(t *testing.T) {
	r, _, nfs := registeredWithNFS(t)
	ctx := context.Background()

	all, err := r.Exports(ctx, "", "", backend.FlagReserved)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byFS, err := r.Exports(ctx, types.KeyFsID, "fs2", backend.FlagReserved)
	require.NoError(t, err)
	require.Len(t, byFS, 1)
	assert.Equal(t, "exp-2", byFS[0].ID)

	_, err = r.Exports(ctx, types.KeySystemID, "nfs", backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)
	assert.Equal(t, 2, nfs.calls["exports"])
}

func TestExportRemoveAndAuth(t *testing.T) {
	r, _, _ := registeredWithNFS(t)
	ctx := context.Background()

	// the fake leaves ExportRemove to backend.Unsupported
	err := r.ExportRemove(ctx, &types.NfsExport{ID: "exp-1"}, backend.FlagReserved)
	requireCode(t, err, errdefs.NoSupport)

	err = r.ExportRemove(ctx, nil, backend.FlagReserved)
	requireCode(t, err, errdefs.InvalidArgument)

	auth, err := r.ExportAuth(ctx, backend.FlagReserved)
	require.NoError(t, err)
	assert.Equal(t, []string{"sys", "krb5"}, auth)
}
