package errdefs

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a domain error. The numeric values match the
// storage-management error numbers clients already know.
type Code int

const (
	PluginBug         Code = 2
	InvalidArgument   Code = 101
	NoSupport         Code = 153
	NotFoundPool      Code = 202
	NotFoundVolume    Code = 205
	NotFoundFS        Code = 206
	NotFoundNFSExport Code = 207
	NotFoundSystem    Code = 208
	NotFoundDisk      Code = 223
)

var codeNames = map[Code]string{
	PluginBug:         "PLUGIN_BUG",
	InvalidArgument:   "INVALID_ARGUMENT",
	NoSupport:         "NO_SUPPORT",
	NotFoundPool:      "NOT_FOUND_POOL",
	NotFoundVolume:    "NOT_FOUND_VOLUME",
	NotFoundFS:        "NOT_FOUND_FS",
	NotFoundNFSExport: "NOT_FOUND_NFS_EXPORT",
	NotFoundSystem:    "NOT_FOUND_SYSTEM",
	NotFoundDisk:      "NOT_FOUND_DISK",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int(c))
}

// Error is a domain error. Anything carrying an *Error in its chain is
// passed through the router untouched.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, errdefs.ErrNoSupport) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New creates a domain error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks. They match by code only.
var (
	ErrPluginBug       = &Error{Code: PluginBug}
	ErrInvalidArgument = &Error{Code: InvalidArgument}
	ErrNoSupport       = &Error{Code: NoSupport}
	ErrNotFoundSystem  = &Error{Code: NotFoundSystem}
)

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) (Code, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code, true
	}
	return 0, false
}

// IsDomain reports whether err carries a domain error.
func IsDomain(err error) bool {
	_, ok := CodeOf(err)
	return ok
}

// IsNoSupport reports whether err is a NoSupport domain error.
func IsNoSupport(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == NoSupport
}

// Unexpected rewraps a non-domain failure as PluginBug. Domain errors and
// nil are returned unchanged.
func Unexpected(err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return Newf(PluginBug, "Got unexpected error %v", err)
}
