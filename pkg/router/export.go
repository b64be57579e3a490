package router

import (
	"context"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
)

const msgNoExportBackend = "NFS plugin is not loaded, please load nfsd kernel module and related services"

// exporter runs fn against the export-capable connection
func exporter(r *Router, op string, fn func(c *connection) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.exportConn == nil {
		return errdefs.New(errdefs.NoSupport, msgNoExportBackend)
	}
	err := fn(r.exportConn)
	r.record(r.exportConn, op, err)
	return err
}

// Exports lists NFS exports, optionally filtered by id or fs_id
func (r *Router) Exports(ctx context.Context, searchKey, searchValue string, flags backend.Flags) (exports []*types.NfsExport, err error) {
	defer r.finish("exports", metrics.NewTimer(), &err)
	if err := validSearchKey(searchKey, types.ExportSearchKeys); err != nil {
		return nil, err
	}

	err = exporter(r, "exports", func(c *connection) (err error) {
		exports, err = c.conn.Exports(ctx, searchKey, searchValue, flags)
		return err
	})
	return exports, err
}

// ExportFS exports a file system over NFS
func (r *Router) ExportFS(ctx context.Context, req *types.ExportRequest, flags backend.Flags) (export *types.NfsExport, err error) {
	defer r.finish("export_fs", metrics.NewTimer(), &err)
	if err := requireOperand("export request", req == nil); err != nil {
		return nil, err
	}

	err = exporter(r, "export_fs", func(c *connection) (err error) {
		export, err = c.conn.ExportFS(ctx, req, flags)
		if err == nil && export != nil {
			r.publish(events.EventExportCreated, c, "", "export "+export.ExportPath+" created",
				map[string]string{"export_id": export.ID, "fs_id": export.FsID})
		}
		return err
	})
	return export, err
}

// ExportRemove removes an NFS export
func (r *Router) ExportRemove(ctx context.Context, export *types.NfsExport, flags backend.Flags) (err error) {
	defer r.finish("export_remove", metrics.NewTimer(), &err)
	if err := requireOperand("export", export == nil); err != nil {
		return err
	}

	return exporter(r, "export_remove", func(c *connection) error {
		if err := c.conn.ExportRemove(ctx, export, flags); err != nil {
			return err
		}
		r.publish(events.EventExportRemoved, c, "", "export "+export.ExportPath+" removed",
			map[string]string{"export_id": export.ID, "fs_id": export.FsID})
		return nil
	})
}

// ExportAuth lists the NFS authentication types the export backend accepts
func (r *Router) ExportAuth(ctx context.Context, flags backend.Flags) (auth []string, err error) {
	defer r.finish("export_auth", metrics.NewTimer(), &err)

	err = exporter(r, "export_auth", func(c *connection) (err error) {
		auth, err = c.conn.ExportAuth(ctx, flags)
		return err
	})
	return auth, err
}
