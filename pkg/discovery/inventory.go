package discovery

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
)

// Inventory reports which hardware signals are present on the host and
// whether a management tool is installed.
type Inventory interface {
	// Modules returns the names of the loaded kernel modules
	Modules() ([]string, error)

	// HasTool reports whether an executable with this name can be found
	HasTool(name string) bool
}

// DefaultModuleDir is where the kernel lists loaded modules
const DefaultModuleDir = "/sys/module"

// DefaultToolDirs are searched after $PATH, since vendor tools often
// install outside it.
var DefaultToolDirs = []string{
	"/usr/sbin",
	"/usr/local/sbin",
	"/opt/arcconf",
	"/opt/smartstorageadmin/ssacli/bin",
}

// HostInventory probes the running host
type HostInventory struct {
	ModuleDir string
	ToolDirs  []string

	lookPath func(string) (string, error)
}

// NewHostInventory creates an inventory using the default locations
func NewHostInventory() *HostInventory {
	return &HostInventory{
		ModuleDir: DefaultModuleDir,
		ToolDirs:  DefaultToolDirs,
		lookPath:  exec.LookPath,
	}
}

// Modules lists the entries of the module directory
func (h *HostInventory) Modules() ([]string, error) {
	entries, err := os.ReadDir(h.ModuleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list kernel modules in %s: %w", h.ModuleDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// HasTool searches $PATH, then ToolDirs, for an executable file
func (h *HostInventory) HasTool(name string) bool {
	lookPath := h.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(name); err == nil {
		return true
	}

	for _, dir := range h.ToolDirs {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && !info.IsDir() && info.Mode()&0111 != 0 {
			return true
		}
	}
	return false
}

// StaticInventory reports a fixed host, for simulation
type StaticInventory struct {
	Signals []string
	Tools   []string
}

// NewStaticInventory reports the signals that select each backend directly
func NewStaticInventory(catalog *Catalog, ids ...backend.ID) (*StaticInventory, error) {
	inv := &StaticInventory{}
	for _, id := range ids {
		signal, ok := catalog.Signal(id)
		if !ok {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "no hardware signal selects backend %q", id)
		}
		inv.Signals = append(inv.Signals, signal)
	}
	return inv, nil
}

func (s *StaticInventory) Modules() ([]string, error) {
	return s.Signals, nil
}

func (s *StaticInventory) HasTool(name string) bool {
	for _, t := range s.Tools {
		if t == name {
			return true
		}
	}
	return false
}
