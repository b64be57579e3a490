package backend

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	Unsupported
	target *Target
	closed bool
}

func (s *stubConn) TimeoutSet(context.Context, time.Duration, Flags) error { return nil }

func (s *stubConn) Close(context.Context, Flags) error {
	s.closed = true
	return nil
}

var _ Connection = (*stubConn)(nil)

func TestTargetString(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   string
	}{
		{name: "no params", target: Target{Backend: Megaraid}, want: "megaraid://"},
		{name: "empty params", target: Target{Backend: NFS, Params: map[string]string{}}, want: "nfs://"},
		{
			name:   "sorted params",
			target: Target{Backend: Arcconf, Params: map[string]string{"tool": "/opt/arcconf", "debug": "1"}},
			want:   "arcconf://?debug=1&tool=/opt/arcconf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.target.String())
		})
	}
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("hpsa://?db=/tmp/hpsa.db&fail=false")
	require.NoError(t, err)
	assert.Equal(t, HPSA, got.Backend)
	assert.Equal(t, map[string]string{"db": "/tmp/hpsa.db", "fail": "false"}, got.Params)

	_, err = ParseTarget("no-scheme")
	assert.Error(t, err)
}

func TestRegistryOpen(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Megaraid, func(ctx context.Context, target *Target, password string, timeout time.Duration, flags Flags) (Connection, error) {
		assert.Equal(t, 3*time.Second, timeout)
		return &stubConn{target: target}, nil
	})

	assert.Equal(t, []ID{Megaraid}, reg.Registered())

	conn, err := reg.Open(context.Background(), "megaraid://?x=1", "", 3*time.Second, FlagReserved)
	require.NoError(t, err)
	stub := conn.(*stubConn)
	assert.Equal(t, "1", stub.target.Params["x"])

	_, err = reg.Open(context.Background(), "hpsa://", "", time.Second, FlagReserved)
	assert.ErrorIs(t, err, errdefs.ErrNoSupport)

	_, err = reg.Open(context.Background(), "::bad", "", time.Second, FlagReserved)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)
}

func TestUnsupportedReturnsNoSupport(t *testing.T) {
	ctx := context.Background()
	var conn Connection = &stubConn{}

	_, err := conn.Disks(ctx, FlagReserved)
	assert.True(t, errdefs.IsNoSupport(err))

	_, err = conn.VolumeDelete(ctx, &types.Volume{ID: "v"}, FlagReserved)
	assert.True(t, errdefs.IsNoSupport(err))

	err = conn.ExportRemove(ctx, &types.NfsExport{ID: "e"}, FlagReserved)
	assert.True(t, errdefs.IsNoSupport(err))

	assert.NoError(t, conn.TimeoutSet(ctx, time.Second, FlagReserved))
}

func TestExportCapable(t *testing.T) {
	assert.True(t, NFS.ExportCapable())
	assert.False(t, Megaraid.ExportCapable())
}
