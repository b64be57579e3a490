package sim

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/log"
)

// Target parameters understood by the simulated backend
const (
	// ParamDB is the state file path
	ParamDB = "db"

	// ParamFail makes Open fail, to exercise ignore_init_error
	ParamFail = "fail"

	// ParamTmoMax is the largest timeout in milliseconds TimeoutSet accepts
	ParamTmoMax = "tmo_max"

	// ParamSystem names the system of a fresh state file
	ParamSystem = "system"
)

// Open opens a simulated connection for target. Without a db parameter the
// state lives in dataDir/<backend>.db; a missing state file is created and
// seeded.
func Open(ctx context.Context, target *backend.Target, dataDir string, timeout time.Duration) (*Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := target.Params

	if v := params[ParamFail]; v != "" {
		fail, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "invalid %s=%s, expecting true or false", ParamFail, v)
		}
		if fail {
			return nil, errdefs.Newf(errdefs.PluginBug, "simulated %s backend failed to initialize", target.Backend)
		}
	}

	var tmoMax time.Duration
	if v := params[ParamTmoMax]; v != "" {
		ms, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "invalid %s=%s, expecting milliseconds", ParamTmoMax, v)
		}
		tmoMax = time.Duration(ms) * time.Millisecond
	}

	dbPath := params[ParamDB]
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, string(target.Backend)+".db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errdefs.Newf(errdefs.PluginBug, "failed to create state directory: %v", err)
	}

	store, err := NewBoltStore(dbPath, timeout)
	if err != nil {
		return nil, errdefs.Newf(errdefs.PluginBug, "failed to open %s: %v", dbPath, err)
	}

	systemID, err := seed(store, target.Backend, params[ParamSystem])
	if err != nil {
		store.Close()
		return nil, errdefs.Newf(errdefs.PluginBug, "failed to seed %s: %v", dbPath, err)
	}

	logger := log.WithBackend(log.WithComponent("sim"), string(target.Backend))
	logger.Debug().Str("db", dbPath).Str("system_id", systemID).Msg("simulated backend opened")

	return &Conn{
		id:       target.Backend,
		store:    store,
		systemID: systemID,
		timeout:  timeout,
		tmoMax:   tmoMax,
		logger:   logger,
	}, nil
}

// Factory returns a backend.Factory that opens simulated connections with
// their state under dataDir
func Factory(dataDir string) backend.Factory {
	return func(ctx context.Context, target *backend.Target, password string, timeout time.Duration, flags backend.Flags) (backend.Connection, error) {
		return Open(ctx, target, dataDir, timeout)
	}
}

// RegisterAll installs the simulated factory for every given backend kind
func RegisterAll(reg *backend.Registry, dataDir string, ids ...backend.ID) {
	factory := Factory(dataDir)
	for _, id := range ids {
		reg.Register(id, factory)
	}
}
