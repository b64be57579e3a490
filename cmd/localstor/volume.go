package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/spf13/cobra"
)

func findVolume(ctx context.Context, r *router.Router, id string) (*types.Volume, error) {
	volumes, err := r.Volumes(ctx, types.KeyID, id, backend.FlagReserved)
	if err != nil {
		return nil, err
	}
	if len(volumes) == 0 {
		return nil, errdefs.Newf(errdefs.NotFoundVolume, "volume %s not found", id)
	}
	return volumes[0], nil
}

func findPool(ctx context.Context, r *router.Router, id string) (*types.Pool, error) {
	pools, err := r.Pools(ctx, types.KeyID, id, backend.FlagReserved)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, errdefs.Newf(errdefs.NotFoundPool, "pool %s not found", id)
	}
	return pools[0], nil
}

func findDisks(ctx context.Context, r *router.Router, ids []string) ([]*types.Disk, error) {
	disks := make([]*types.Disk, 0, len(ids))
	for _, id := range ids {
		found, err := r.Disks(ctx, types.KeyID, id, backend.FlagReserved)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, errdefs.Newf(errdefs.NotFoundDisk, "disk %s not found", id)
		}
		disks = append(disks, found[0])
	}
	return disks, nil
}

// parseRaidType accepts "RAID5", "raid5" or "5"
func parseRaidType(s string) (types.RaidType, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "RAID")
	if trimmed == "JBOD" {
		return types.RaidTypeJBOD, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return types.RaidTypeUnknown, errdefs.Newf(errdefs.InvalidArgument, "invalid RAID type %q", s)
	}
	rt := types.RaidType(n)
	if rt.MinDisks() == 0 {
		return types.RaidTypeUnknown, errdefs.Newf(errdefs.InvalidArgument, "invalid RAID type %q", s)
	}
	return rt, nil
}

// parseCachePolicy maps a flag value to a cache policy
func parseCachePolicy(s string) (types.CachePolicy, error) {
	switch strings.ToLower(s) {
	case "enabled", "on":
		return types.CacheEnabled, nil
	case "disabled", "off":
		return types.CacheDisabled, nil
	case "auto":
		return types.CacheAuto, nil
	case "wb", "write-back":
		return types.CacheWriteBack, nil
	case "wt", "write-through":
		return types.CacheWriteThrough, nil
	case "disk", "use-disk-setting":
		return types.CacheUseDiskSetting, nil
	default:
		return types.CacheUnknown, errdefs.Newf(errdefs.InvalidArgument, "invalid cache policy %q", s)
	}
}

func raidTypeName(rt types.RaidType) string {
	switch rt {
	case types.RaidTypeJBOD:
		return "JBOD"
	case types.RaidTypeUnknown:
		return "Unknown"
	case types.RaidTypeOther:
		return "Other"
	default:
		return fmt.Sprintf("RAID%d", int(rt))
	}
}

func cachePolicyName(p types.CachePolicy) string {
	switch p {
	case types.CacheEnabled:
		return "Enabled"
	case types.CacheAuto:
		return "Auto"
	case types.CacheDisabled:
		return "Disabled"
	case types.CacheWriteBack:
		return "Write Back"
	case types.CacheWriteThrough:
		return "Write Through"
	case types.CacheUseDiskSetting:
		return "Use Disk Setting"
	default:
		return "Unknown"
	}
}

var volumeRaidCreateCmd = &cobra.Command{
	Use:   "volume-raid-create",
	Short: "Create a RAID volume from free disks",
	Example: `  # Mirror two disks on one controller
  localstor volume-raid-create --name data --raid-type RAID1 --disk DISK_A --disk DISK_B`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		raid, _ := cmd.Flags().GetString("raid-type")
		diskIDs, _ := cmd.Flags().GetStringArray("disk")
		strip, _ := cmd.Flags().GetUint32("strip-size")

		raidType, err := parseRaidType(raid)
		if err != nil {
			return err
		}

		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			disks, err := findDisks(ctx, r, diskIDs)
			if err != nil {
				return err
			}
			volume, err := r.VolumeRaidCreate(ctx, name, raidType, disks, strip, backend.FlagReserved)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, volume, volumeTable([]*types.Volume{volume}))
		})
	},
}

func volumeTable(volumes []*types.Volume) table {
	t := table{header: "ID\tNAME\tSYSTEM\tPOOL\tSIZE", empty: "No volumes found"}
	for _, v := range volumes {
		t.rows = append(t.rows, []any{v.ID, v.Name, v.SystemID, v.PoolID, formatBytes(v.SizeBytes())})
	}
	return t
}

var volumeRaidCreateCapCmd = &cobra.Command{
	Use:   "volume-raid-create-cap SYSTEM_ID",
	Short: "Show the RAID levels and strip sizes a system accepts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			raidCap, err := r.VolumeRaidCreateCapGet(cmd.Context(), &types.System{ID: args[0]}, backend.FlagReserved)
			if err != nil {
				return err
			}
			levels := make([]string, len(raidCap.RaidTypes))
			for i, rt := range raidCap.RaidTypes {
				levels[i] = raidTypeName(rt)
			}
			strips := make([]string, len(raidCap.StripSizes))
			for i, s := range raidCap.StripSizes {
				strips[i] = formatBytes(uint64(s))
			}
			return render(cmd.OutOrStdout(), outputFormat, raidCap, table{
				header: "RAID TYPES\tSTRIP SIZES",
				rows:   [][]any{{levels, strips}},
			})
		})
	},
}

var volumeRaidInfoCmd = &cobra.Command{
	Use:   "volume-raid-info VOLUME_ID",
	Short: "Show the RAID layout behind a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			volume, err := findVolume(ctx, r, args[0])
			if err != nil {
				return err
			}
			info, err := r.VolumeRaidInfo(ctx, volume, backend.FlagReserved)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, info, table{
				header: "RAID TYPE\tSTRIP SIZE\tDISKS\tMIN IO\tOPT IO",
				rows: [][]any{{raidTypeName(info.RaidType), formatBytes(uint64(info.StripSize)),
					info.DiskCount, formatBytes(uint64(info.MinIOSize)), formatBytes(uint64(info.OptIOSize))}},
			})
		})
	},
}

var poolMemberInfoCmd = &cobra.Command{
	Use:   "pool-member-info POOL_ID",
	Short: "Show the members of a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			pool, err := findPool(ctx, r, args[0])
			if err != nil {
				return err
			}
			info, err := r.PoolMemberInfo(ctx, pool, backend.FlagReserved)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, info, table{
				header: "RAID TYPE\tMEMBERS",
				rows:   [][]any{{raidTypeName(info.RaidType), info.MemberIDs}},
			})
		})
	},
}

var volumeCacheInfoCmd = &cobra.Command{
	Use:   "volume-cache-info VOLUME_ID",
	Short: "Show cache settings of a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			volume, err := findVolume(ctx, r, args[0])
			if err != nil {
				return err
			}
			info, err := r.VolumeCacheInfo(ctx, volume, backend.FlagReserved)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), outputFormat, info, table{
				header: "WRITE SETTING\tWRITE STATUS\tREAD SETTING\tREAD STATUS\tDISK CACHE",
				rows: [][]any{{cachePolicyName(info.WriteCacheSetting), cachePolicyName(info.WriteCacheStatus),
					cachePolicyName(info.ReadCacheSetting), cachePolicyName(info.ReadCacheStatus),
					cachePolicyName(info.PhysicalDiskCacheStatus)}},
			})
		})
	},
}

var volumeCacheUpdateCmd = &cobra.Command{
	Use:   "volume-cache-update VOLUME_ID",
	Short: "Change the write, read or physical disk cache policy of a volume",
	Example: `  localstor volume-cache-update VOLUME_ID --write wb --read enabled
  localstor volume-cache-update VOLUME_ID --pdc disabled`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updates := []struct {
			flag string
			fn   func(*router.Router, context.Context, *types.Volume, types.CachePolicy, backend.Flags) error
		}{
			{"write", (*router.Router).VolumeWriteCachePolicyUpdate},
			{"read", (*router.Router).VolumeReadCachePolicyUpdate},
			{"pdc", (*router.Router).VolumePhysicalDiskCacheUpdate},
		}

		policies := make(map[string]types.CachePolicy)
		for _, u := range updates {
			if !cmd.Flags().Changed(u.flag) {
				continue
			}
			value, _ := cmd.Flags().GetString(u.flag)
			policy, err := parseCachePolicy(value)
			if err != nil {
				return err
			}
			policies[u.flag] = policy
		}
		if len(policies) == 0 {
			return errdefs.New(errdefs.InvalidArgument, "one of --write, --read or --pdc is required")
		}

		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			volume, err := findVolume(ctx, r, args[0])
			if err != nil {
				return err
			}
			for _, u := range updates {
				policy, ok := policies[u.flag]
				if !ok {
					continue
				}
				if err := u.fn(r, ctx, volume, policy, backend.FlagReserved); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Volume %s cache updated\n", volume.ID)
			return err
		})
	},
}

var volumeDeleteCmd = &cobra.Command{
	Use:   "volume-delete VOLUME_ID",
	Short: "Delete a volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRouter(cmd.Context(), func(r *router.Router) error {
			ctx := cmd.Context()
			volume, err := findVolume(ctx, r, args[0])
			if err != nil {
				return err
			}
			if _, err := r.VolumeDelete(ctx, volume, backend.FlagReserved); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ Volume %s deleted\n", volume.ID)
			return err
		})
	},
}

func init() {
	volumeRaidCreateCmd.Flags().String("name", "", "Volume name (required)")
	volumeRaidCreateCmd.Flags().String("raid-type", "", "RAID level, e.g. RAID1 or 5 (required)")
	volumeRaidCreateCmd.Flags().StringArray("disk", nil, "Member disk ID (repeatable, required)")
	volumeRaidCreateCmd.Flags().Uint32("strip-size", 0, "Strip size in bytes (0 for the controller default)")
	_ = volumeRaidCreateCmd.MarkFlagRequired("name")
	_ = volumeRaidCreateCmd.MarkFlagRequired("raid-type")
	_ = volumeRaidCreateCmd.MarkFlagRequired("disk")

	volumeCacheUpdateCmd.Flags().String("write", "", "Write cache policy: wb, wt or auto")
	volumeCacheUpdateCmd.Flags().String("read", "", "Read cache policy: enabled or disabled")
	volumeCacheUpdateCmd.Flags().String("pdc", "", "Physical disk cache: enabled, disabled or disk")

	rootCmd.AddCommand(volumeRaidCreateCmd, volumeRaidCreateCapCmd, volumeRaidInfoCmd,
		poolMemberInfoCmd, volumeCacheInfoCmd, volumeCacheUpdateCmd, volumeDeleteCmd)
}
