package types

// RaidType identifies a RAID level
type RaidType int

const (
	RaidTypeUnknown RaidType = -1
	RaidType0       RaidType = 0
	RaidType1       RaidType = 1
	RaidType5       RaidType = 5
	RaidType6       RaidType = 6
	RaidType10      RaidType = 10
	RaidType50      RaidType = 50
	RaidType60      RaidType = 60
	RaidTypeJBOD    RaidType = 20
	RaidTypeOther   RaidType = 22
)

// MinDisks returns the minimum member count for the RAID level, or 0 if unknown
func (r RaidType) MinDisks() int {
	switch r {
	case RaidType0, RaidTypeJBOD:
		return 1
	case RaidType1:
		return 2
	case RaidType5:
		return 3
	case RaidType6, RaidType10:
		return 4
	case RaidType50:
		return 6
	case RaidType60:
		return 8
	default:
		return 0
	}
}

// VolumeRaidInfo describes the RAID layout behind a volume
type VolumeRaidInfo struct {
	RaidType  RaidType `json:"raid_type" yaml:"raid_type"`
	StripSize uint32   `json:"strip_size" yaml:"strip_size"`
	DiskCount int      `json:"disk_count" yaml:"disk_count"`
	MinIOSize uint32   `json:"min_io_size" yaml:"min_io_size"`
	OptIOSize uint32   `json:"opt_io_size" yaml:"opt_io_size"`
}

// PoolMemberType identifies what a pool is built from
type PoolMemberType int

const (
	PoolMemberUnknown PoolMemberType = 0
	PoolMemberOther   PoolMemberType = 1
	PoolMemberDisk    PoolMemberType = 2
	PoolMemberPool    PoolMemberType = 3
)

// PoolMemberInfo describes the members of a pool
type PoolMemberInfo struct {
	RaidType   RaidType       `json:"raid_type" yaml:"raid_type"`
	MemberType PoolMemberType `json:"member_type" yaml:"member_type"`
	MemberIDs  []string       `json:"member_ids" yaml:"member_ids"`
}

// RaidCreateCap lists the RAID levels and strip sizes a system accepts
type RaidCreateCap struct {
	RaidTypes  []RaidType `json:"raid_types" yaml:"raid_types"`
	StripSizes []uint32   `json:"strip_sizes" yaml:"strip_sizes"`
}

// SupportsRaidType reports whether rt is in the capability list
func (c *RaidCreateCap) SupportsRaidType(rt RaidType) bool {
	for _, t := range c.RaidTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// SupportsStripSize reports whether size is in the capability list
func (c *RaidCreateCap) SupportsStripSize(size uint32) bool {
	for _, s := range c.StripSizes {
		if s == size {
			return true
		}
	}
	return false
}

// CachePolicy is a read/write cache setting or status
type CachePolicy int

const (
	CacheUnknown        CachePolicy = -1
	CacheEnabled        CachePolicy = 1
	CacheAuto           CachePolicy = 2
	CacheDisabled       CachePolicy = 3
	CacheWriteBack      CachePolicy = 4
	CacheWriteThrough   CachePolicy = 5
	CacheUseDiskSetting CachePolicy = 6
)

// VolumeCacheInfo reports cache settings and effective status of a volume
type VolumeCacheInfo struct {
	WriteCacheSetting       CachePolicy `json:"write_cache_setting" yaml:"write_cache_setting"`
	WriteCacheStatus        CachePolicy `json:"write_cache_status" yaml:"write_cache_status"`
	ReadCacheSetting        CachePolicy `json:"read_cache_setting" yaml:"read_cache_setting"`
	ReadCacheStatus         CachePolicy `json:"read_cache_status" yaml:"read_cache_status"`
	PhysicalDiskCacheStatus CachePolicy `json:"physical_disk_cache_status" yaml:"physical_disk_cache_status"`
}
