package types

// Search keys accepted by collection queries
const (
	KeyID       = "id"
	KeySystemID = "system_id"
	KeyPoolID   = "pool_id"
	KeyFsID     = "fs_id"
)

// Searchable is implemented by every object a collection query returns.
// Property returns the value of the attribute named by key.
type Searchable interface {
	Property(key string) (string, bool)
}

// Searchable keys per kind
var (
	DiskSearchKeys       = []string{KeyID, KeySystemID}
	PoolSearchKeys       = []string{KeyID, KeySystemID}
	VolumeSearchKeys     = []string{KeyID, KeySystemID, KeyPoolID}
	BatterySearchKeys    = []string{KeyID, KeySystemID}
	FileSystemSearchKeys = []string{KeyID, KeySystemID, KeyPoolID}
	ExportSearchKeys     = []string{KeyID, KeyFsID}
)

// Filter keeps the items whose property key equals value. An empty key keeps everything.
func Filter[T Searchable](items []T, key, value string) []T {
	if key == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.Property(key); ok && v == value {
			out = append(out, item)
		}
	}
	return out
}

func (s *System) Property(key string) (string, bool) {
	if key == KeyID {
		return s.ID, true
	}
	return "", false
}

func (d *Disk) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return d.ID, true
	case KeySystemID:
		return d.SystemID, true
	}
	return "", false
}

func (p *Pool) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return p.ID, true
	case KeySystemID:
		return p.SystemID, true
	}
	return "", false
}

func (v *Volume) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return v.ID, true
	case KeySystemID:
		return v.SystemID, true
	case KeyPoolID:
		return v.PoolID, true
	}
	return "", false
}

func (b *Battery) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return b.ID, true
	case KeySystemID:
		return b.SystemID, true
	}
	return "", false
}

func (f *FileSystem) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return f.ID, true
	case KeySystemID:
		return f.SystemID, true
	case KeyPoolID:
		return f.PoolID, true
	}
	return "", false
}

func (e *NfsExport) Property(key string) (string, bool) {
	switch key {
	case KeyID:
		return e.ID, true
	case KeyFsID:
		return e.FsID, true
	}
	return "", false
}
