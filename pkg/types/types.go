package types

// System represents a storage system (one RAID controller or one NFS host)
type System struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Status       SystemStatus `json:"status" yaml:"status"`
	StatusInfo   string       `json:"status_info,omitempty" yaml:"status_info,omitempty"`
	FwVersion    string       `json:"fw_version,omitempty" yaml:"fw_version,omitempty"`
	ReadCachePct int          `json:"read_cache_pct" yaml:"read_cache_pct"`
	Mode         SystemMode   `json:"mode" yaml:"mode"`
}

// SystemStatus is a bit field describing system health
type SystemStatus uint32

const (
	SystemStatusUnknown  SystemStatus = 1 << 0
	SystemStatusOK       SystemStatus = 1 << 1
	SystemStatusDegraded SystemStatus = 1 << 4
	SystemStatusError    SystemStatus = 1 << 5
	SystemStatusOther    SystemStatus = 1 << 14
)

// SystemMode describes how a RAID controller presents disks
type SystemMode int

const (
	SystemModeUnknown      SystemMode = -2
	SystemModeNoSupport    SystemMode = -1
	SystemModeHardwareRAID SystemMode = 0
	SystemModeHBA          SystemMode = 1
)

// ReadCachePctNoSupport is reported when a system cannot tell its read cache ratio
const ReadCachePctNoSupport = -1

// Disk represents a physical disk attached to a system
type Disk struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	DiskType    DiskType   `json:"disk_type" yaml:"disk_type"`
	BlockSize   uint64     `json:"block_size" yaml:"block_size"`
	NumOfBlocks uint64     `json:"num_of_blocks" yaml:"num_of_blocks"`
	Status      DiskStatus `json:"status" yaml:"status"`
	SystemID    string     `json:"system_id" yaml:"system_id"`
	VPD83       string     `json:"vpd83,omitempty" yaml:"vpd83,omitempty"`
	Location    string     `json:"location,omitempty" yaml:"location,omitempty"`
	RPM         int        `json:"rpm" yaml:"rpm"`
	LinkType    DiskLink   `json:"link_type" yaml:"link_type"`
}

// DiskType is the media type of a disk
type DiskType int

const (
	DiskTypeUnknown DiskType = 0
	DiskTypeSATA    DiskType = 3
	DiskTypeSAS     DiskType = 5
	DiskTypeSSD     DiskType = 53
)

// DiskStatus is a bit field describing disk state
type DiskStatus uint64

const (
	DiskStatusUnknown DiskStatus = 1 << 0
	DiskStatusOK      DiskStatus = 1 << 1
	DiskStatusFree    DiskStatus = 1 << 13
)

// DiskLink is the transport a disk is attached through
type DiskLink int

const (
	DiskLinkUnknown DiskLink = -1
	DiskLinkSAS     DiskLink = 6
	DiskLinkATA     DiskLink = 7
)

// Pool represents a storage pool (a RAID group on most controllers)
type Pool struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	ElementType        uint64     `json:"element_type" yaml:"element_type"`
	UnsupportedActions uint64     `json:"unsupported_actions" yaml:"unsupported_actions"`
	TotalSpace         uint64     `json:"total_space" yaml:"total_space"`
	FreeSpace          uint64     `json:"free_space" yaml:"free_space"`
	Status             PoolStatus `json:"status" yaml:"status"`
	StatusInfo         string     `json:"status_info,omitempty" yaml:"status_info,omitempty"`
	SystemID           string     `json:"system_id" yaml:"system_id"`
}

// PoolStatus is a bit field describing pool state
type PoolStatus uint64

const (
	PoolStatusUnknown PoolStatus = 1 << 0
	PoolStatusOK      PoolStatus = 1 << 1
)

// Pool element types
const (
	PoolElementVolume uint64 = 1 << 1
	PoolElementFS     uint64 = 1 << 2
)

// Volume represents a logical volume carved out of a pool
type Volume struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	VPD83       string `json:"vpd83,omitempty" yaml:"vpd83,omitempty"`
	BlockSize   uint64 `json:"block_size" yaml:"block_size"`
	NumOfBlocks uint64 `json:"num_of_blocks" yaml:"num_of_blocks"`
	AdminState  int    `json:"admin_state" yaml:"admin_state"`
	SystemID    string `json:"system_id" yaml:"system_id"`
	PoolID      string `json:"pool_id" yaml:"pool_id"`
}

// SizeBytes returns the volume size in bytes
func (v *Volume) SizeBytes() uint64 {
	return v.BlockSize * v.NumOfBlocks
}

// Volume admin states
const (
	VolumeAdminDisabled = 0
	VolumeAdminEnabled  = 1
)

// Battery represents a cache-protection battery or capacitor
type Battery struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Type       BatteryType   `json:"type" yaml:"type"`
	Status     BatteryStatus `json:"status" yaml:"status"`
	StatusInfo string        `json:"status_info,omitempty" yaml:"status_info,omitempty"`
	SystemID   string        `json:"system_id" yaml:"system_id"`
}

// BatteryType identifies the kind of cache protection
type BatteryType int

const (
	BatteryTypeUnknown   BatteryType = 1
	BatteryTypeChemical  BatteryType = 3
	BatteryTypeCapacitor BatteryType = 4
)

// BatteryStatus is a bit field describing battery state
type BatteryStatus uint64

const (
	BatteryStatusUnknown BatteryStatus = 1 << 0
	BatteryStatusOK      BatteryStatus = 1 << 1
)

// FileSystem represents an exportable file system
type FileSystem struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	TotalSpace uint64 `json:"total_space" yaml:"total_space"`
	FreeSpace  uint64 `json:"free_space" yaml:"free_space"`
	PoolID     string `json:"pool_id" yaml:"pool_id"`
	SystemID   string `json:"system_id" yaml:"system_id"`
}

// AnonIDNotApplicable marks an unset anonymous uid/gid on an export
const AnonIDNotApplicable int64 = -1

// NfsExport represents one NFS export of a file system
type NfsExport struct {
	ID         string   `json:"id" yaml:"id"`
	FsID       string   `json:"fs_id" yaml:"fs_id"`
	ExportPath string   `json:"export_path" yaml:"export_path"`
	Auth       string   `json:"auth,omitempty" yaml:"auth,omitempty"`
	Root       []string `json:"root,omitempty" yaml:"root,omitempty"`
	RW         []string `json:"rw,omitempty" yaml:"rw,omitempty"`
	RO         []string `json:"ro,omitempty" yaml:"ro,omitempty"`
	AnonUID    int64    `json:"anon_uid" yaml:"anon_uid"`
	AnonGID    int64    `json:"anon_gid" yaml:"anon_gid"`
	Options    string   `json:"options,omitempty" yaml:"options,omitempty"`
}

// ExportRequest carries every argument of an export_fs call
type ExportRequest struct {
	FsID       string
	ExportPath string
	RootList   []string
	RWList     []string
	ROList     []string
	AnonUID    int64
	AnonGID    int64
	AuthType   string
	Options    string
}

// NewExportRequest returns a request with the anonymous ids left unset
func NewExportRequest(fsID, exportPath string) *ExportRequest {
	return &ExportRequest{
		FsID:       fsID,
		ExportPath: exportPath,
		AnonUID:    AnonIDNotApplicable,
		AnonGID:    AnonIDNotApplicable,
	}
}
