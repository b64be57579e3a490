package types

import (
	"fmt"
	"sort"
)

// Capability identifies one optional operation a system may support
type Capability int

const (
	CapVolumes                       Capability = 20
	CapVolumeDelete                  Capability = 33
	CapFS                            Capability = 100
	CapExportAuth                    Capability = 120
	CapExports                       Capability = 121
	CapExportFS                      Capability = 122
	CapExportRemove                  Capability = 123
	CapExportCustomPath              Capability = 124
	CapSysReadCachePctGet            Capability = 158
	CapSysFwVersionGet               Capability = 160
	CapSysModeGet                    Capability = 161
	CapDiskLocation                  Capability = 163
	CapDiskRPM                       Capability = 164
	CapDiskLinkType                  Capability = 165
	CapVolumeRaidInfo                Capability = 180
	CapPoolMemberInfo                Capability = 181
	CapVolumeRaidCreate              Capability = 182
	CapDiskVPD83Get                  Capability = 190
	CapBatteries                     Capability = 200
	CapVolumeCacheInfo               Capability = 201
	CapVolumePhysicalDiskCacheUpdate Capability = 202
	CapVolumeWriteCacheWBAuto        Capability = 207
	CapVolumeWriteCacheWB            Capability = 208
	CapVolumeWriteCacheWT            Capability = 209
	CapVolumeReadCacheUpdate         Capability = 212
)

var capabilityNames = map[Capability]string{
	CapVolumes:                       "VOLUMES",
	CapVolumeDelete:                  "VOLUME_DELETE",
	CapFS:                            "FS",
	CapExportAuth:                    "EXPORT_AUTH",
	CapExports:                       "EXPORTS",
	CapExportFS:                      "EXPORT_FS",
	CapExportRemove:                  "EXPORT_REMOVE",
	CapExportCustomPath:              "EXPORT_CUSTOM_PATH",
	CapSysReadCachePctGet:            "SYS_READ_CACHE_PCT_GET",
	CapSysFwVersionGet:               "SYS_FW_VERSION_GET",
	CapSysModeGet:                    "SYS_MODE_GET",
	CapDiskLocation:                  "DISK_LOCATION",
	CapDiskRPM:                       "DISK_RPM",
	CapDiskLinkType:                  "DISK_LINK_TYPE",
	CapVolumeRaidInfo:                "VOLUME_RAID_INFO",
	CapPoolMemberInfo:                "POOL_MEMBER_INFO",
	CapVolumeRaidCreate:              "VOLUME_RAID_CREATE",
	CapDiskVPD83Get:                  "DISK_VPD83_GET",
	CapBatteries:                     "BATTERIES",
	CapVolumeCacheInfo:               "VOLUME_CACHE_INFO",
	CapVolumePhysicalDiskCacheUpdate: "VOLUME_PHYSICAL_DISK_CACHE_UPDATE",
	CapVolumeWriteCacheWBAuto:        "VOLUME_WRITE_CACHE_POLICY_UPDATE_WB_AUTO",
	CapVolumeWriteCacheWB:            "VOLUME_WRITE_CACHE_POLICY_UPDATE_WB",
	CapVolumeWriteCacheWT:            "VOLUME_WRITE_CACHE_POLICY_UPDATE_WT",
	CapVolumeReadCacheUpdate:         "VOLUME_READ_CACHE_POLICY_UPDATE",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CAP_%d", int(c))
}

// Capabilities is the set of capabilities a system reports
type Capabilities struct {
	supported map[Capability]bool
}

// NewCapabilities builds a capability set from the given list
func NewCapabilities(caps ...Capability) *Capabilities {
	c := &Capabilities{supported: make(map[Capability]bool, len(caps))}
	for _, capability := range caps {
		c.supported[capability] = true
	}
	return c
}

// Set marks a capability as supported
func (c *Capabilities) Set(capability Capability) {
	if c.supported == nil {
		c.supported = make(map[Capability]bool)
	}
	c.supported[capability] = true
}

// Supported reports whether cap is supported
func (c *Capabilities) Supported(capability Capability) bool {
	return c != nil && c.supported[capability]
}

// List returns the supported capabilities in ascending order
func (c *Capabilities) List() []Capability {
	if c == nil {
		return nil
	}
	out := make([]Capability, 0, len(c.supported))
	for capability, ok := range c.supported {
		if ok {
			out = append(out, capability)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
