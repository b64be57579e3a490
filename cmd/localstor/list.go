package main

import (
	"context"
	"fmt"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the plugin description and version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			desc, version := r.Info()
			v := struct {
				Description string       `json:"description" yaml:"description"`
				Version     string       `json:"version" yaml:"version"`
				Backends    []backend.ID `json:"backends" yaml:"backends"`
			}{desc, version, r.Backends()}

			backends := make([]string, len(v.Backends))
			for i, id := range v.Backends {
				backends[i] = string(id)
			}
			return render(cmd.OutOrStdout(), outputFormat, v, table{
				header: "DESCRIPTION\tVERSION\tBACKENDS",
				rows:   [][]any{{desc, version, backends}},
			})
		})
	},
}

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List storage systems across every active backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			systems, err := r.Systems(cmd.Context(), backend.FlagReserved)
			if err != nil {
				return err
			}
			t := table{header: "ID\tNAME\tSTATUS\tFIRMWARE\tMODE", empty: "No systems found"}
			for _, s := range systems {
				t.rows = append(t.rows, []any{s.ID, s.Name, systemStatus(s.Status), s.FwVersion, systemMode(s.Mode)})
			}
			return render(cmd.OutOrStdout(), outputFormat, systems, t)
		})
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities SYSTEM_ID",
	Short: "List the capabilities of one system",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			caps, err := r.Capabilities(ctx, &types.System{ID: args[0]}, backend.FlagReserved)
			if err != nil {
				return err
			}

			names := make([]string, 0)
			t := table{header: "CAPABILITY\tVALUE", empty: "No capabilities"}
			for _, c := range caps.List() {
				names = append(names, c.String())
				t.rows = append(t.rows, []any{c.String(), int(c)})
			}
			return render(cmd.OutOrStdout(), outputFormat, names, t)
		})
	},
}

// searchFlags adds --search-key and --search-value to a list command
func searchFlags(cmd *cobra.Command, keys []string) {
	cmd.Flags().String("search-key", "", fmt.Sprintf("Filter key (one of %v)", keys))
	cmd.Flags().String("search-value", "", "Value the search key must equal")
}

func searchArgs(cmd *cobra.Command) (string, string) {
	key, _ := cmd.Flags().GetString("search-key")
	value, _ := cmd.Flags().GetString("search-value")
	return key, value
}

// listCommand builds a filtered list command over one router query
func listCommand[T any](use, short string, keys []string, list func(r *router.Router, ctx context.Context, key, value string) ([]T, error), t func([]T) table) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := searchArgs(cmd)
			return withRouter(cmd.Context(), func(r *router.Router) error {
				items, err := list(r, cmd.Context(), key, value)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), outputFormat, items, t(items))
			})
		},
	}
	searchFlags(cmd, keys)
	return cmd
}

var disksCmd = listCommand("disks", "List physical disks", types.DiskSearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.Disk, error) {
		return r.Disks(ctx, key, value, backend.FlagReserved)
	},
	func(disks []*types.Disk) table {
		t := table{header: "ID\tNAME\tSYSTEM\tSIZE\tSTATUS\tLOCATION", empty: "No disks found"}
		for _, d := range disks {
			t.rows = append(t.rows, []any{d.ID, d.Name, d.SystemID, formatBytes(d.BlockSize * d.NumOfBlocks), diskStatus(d.Status), d.Location})
		}
		return t
	})

var poolsCmd = listCommand("pools", "List storage pools", types.PoolSearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.Pool, error) {
		return r.Pools(ctx, key, value, backend.FlagReserved)
	},
	func(pools []*types.Pool) table {
		t := table{header: "ID\tNAME\tSYSTEM\tTOTAL\tFREE", empty: "No pools found"}
		for _, p := range pools {
			t.rows = append(t.rows, []any{p.ID, p.Name, p.SystemID, formatBytes(p.TotalSpace), formatBytes(p.FreeSpace)})
		}
		return t
	})

var volumesCmd = listCommand("volumes", "List volumes", types.VolumeSearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.Volume, error) {
		return r.Volumes(ctx, key, value, backend.FlagReserved)
	},
	volumeTable)

var batteriesCmd = listCommand("batteries", "List cache batteries and capacitors", types.BatterySearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.Battery, error) {
		return r.Batteries(ctx, key, value, backend.FlagReserved)
	},
	func(batteries []*types.Battery) table {
		t := table{header: "ID\tNAME\tSYSTEM\tTYPE\tSTATUS", empty: "No batteries found"}
		for _, b := range batteries {
			t.rows = append(t.rows, []any{b.ID, b.Name, b.SystemID, batteryType(b.Type), batteryStatus(b.Status)})
		}
		return t
	})

var fsCmd = listCommand("fs", "List file systems", types.FileSystemSearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.FileSystem, error) {
		return r.FileSystems(ctx, key, value, backend.FlagReserved)
	},
	func(fss []*types.FileSystem) table {
		t := table{header: "ID\tNAME\tSYSTEM\tTOTAL\tFREE", empty: "No file systems found"}
		for _, f := range fss {
			t.rows = append(t.rows, []any{f.ID, f.Name, f.SystemID, formatBytes(f.TotalSpace), formatBytes(f.FreeSpace)})
		}
		return t
	})

var exportsCmd = listCommand("exports", "List NFS exports", types.ExportSearchKeys,
	func(r *router.Router, ctx context.Context, key, value string) ([]*types.NfsExport, error) {
		return r.Exports(ctx, key, value, backend.FlagReserved)
	},
	exportTable)

func exportTable(exports []*types.NfsExport) table {
	t := table{header: "ID\tPATH\tFS\tAUTH\tRW\tRO\tROOT", empty: "No exports found"}
	for _, e := range exports {
		t.rows = append(t.rows, []any{e.ID, e.ExportPath, e.FsID, e.Auth, e.RW, e.RO, e.Root})
	}
	return t
}

var exportAuthCmd = &cobra.Command{
	Use:   "export-auth",
	Short: "List the NFS authentication types the file server accepts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			auth, err := r.ExportAuth(cmd.Context(), backend.FlagReserved)
			if err != nil {
				return err
			}
			t := table{header: "AUTH", empty: "No authentication types"}
			for _, a := range auth {
				t.rows = append(t.rows, []any{a})
			}
			return render(cmd.OutOrStdout(), outputFormat, auth, t)
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, systemsCmd, capabilitiesCmd, disksCmd, poolsCmd,
		volumesCmd, batteriesCmd, fsCmd, exportsCmd, exportAuthCmd)
}
