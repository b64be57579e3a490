package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeString(t *testing.T) {
	assert.Equal(t, "NO_SUPPORT", NoSupport.String())
	assert.Equal(t, "NOT_FOUND_SYSTEM", NotFoundSystem.String())
	assert.Equal(t, "ERROR_999", Code(999).String())
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := New(NoSupport, "Not supported yet")

	assert.True(t, errors.Is(err, ErrNoSupport))
	assert.False(t, errors.Is(err, ErrInvalidArgument))

	wrapped := fmt.Errorf("listing disks: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNoSupport))
	assert.True(t, IsNoSupport(wrapped))
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("outer: %w", New(NotFoundSystem, "System not found")))
	assert.True(t, ok)
	assert.Equal(t, NotFoundSystem, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestUnexpected(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode Code
		wantSame bool
	}{
		{name: "nil stays nil", err: nil},
		{name: "domain error passes through", err: New(InvalidArgument, "bad"), wantCode: InvalidArgument, wantSame: true},
		{name: "plain error becomes plugin bug", err: errors.New("boom"), wantCode: PluginBug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unexpected(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			if tt.wantSame {
				assert.Same(t, tt.err, got)
			}
			code, ok := CodeOf(got)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}

	assert.Equal(t, "PLUGIN_BUG: Got unexpected error boom", Unexpected(errors.New("boom")).Error())
}
