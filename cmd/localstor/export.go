package main

import (
	"fmt"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/spf13/cobra"
)

var exportFSCmd = &cobra.Command{
	Use:   "export-fs",
	Short: "Export a file system over NFS",
	Example: `  # Read-write export for one subnet
  localstor export-fs --fs FS_ID --path /srv/share --rw 10.0.0.0/24`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		fsID, _ := flags.GetString("fs")
		path, _ := flags.GetString("path")

		req := types.NewExportRequest(fsID, path)
		req.RWList, _ = flags.GetStringArray("rw")
		req.ROList, _ = flags.GetStringArray("ro")
		req.RootList, _ = flags.GetStringArray("root")
		req.AuthType, _ = flags.GetString("auth")
		req.Options, _ = flags.GetString("options")
		if flags.Changed("anon-uid") {
			req.AnonUID, _ = flags.GetInt64("anon-uid")
		}
		if flags.Changed("anon-gid") {
			req.AnonGID, _ = flags.GetInt64("anon-gid")
		}

		return withRouter(cmd.Context(), func(r *router.Router) error {
			export, err := r.ExportFS(cmd.Context(), req, backend.FlagReserved)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, export, exportTable([]*types.NfsExport{export}))
		})
	},
}

var exportRemoveCmd = &cobra.Command{
	Use:   "export-remove EXPORT_ID",
	Short: "Remove an NFS export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			exports, err := r.Exports(ctx, types.KeyID, args[0], backend.FlagReserved)
			if err != nil {
				return err
			}
			if len(exports) == 0 {
				return errdefs.Newf(errdefs.NotFoundNFSExport, "export %s not found", args[0])
			}
			if err := r.ExportRemove(ctx, exports[0], backend.FlagReserved); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Export %s removed\n", exports[0].ID)
			return err
		})
	},
}

func init() {
	exportFSCmd.Flags().String("fs", "", "File system ID (required)")
	exportFSCmd.Flags().String("path", "", "Export path (defaults to the file system name)")
	exportFSCmd.Flags().StringArray("rw", nil, "Host with read-write access (repeatable)")
	exportFSCmd.Flags().StringArray("ro", nil, "Host with read-only access (repeatable)")
	exportFSCmd.Flags().StringArray("root", nil, "Host with root access (repeatable)")
	exportFSCmd.Flags().String("auth", "sys", "Authentication type")
	exportFSCmd.Flags().Int64("anon-uid", types.AnonIDNotApplicable, "Anonymous user ID")
	exportFSCmd.Flags().Int64("anon-gid", types.AnonIDNotApplicable, "Anonymous group ID")
	exportFSCmd.Flags().String("options", "", "Extra export options")
	_ = exportFSCmd.MarkFlagRequired("fs")

	rootCmd.AddCommand(exportFSCmd, exportRemoveCmd)
}
