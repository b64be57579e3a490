//go:build !unix

package router

func isPrivileged() bool {
	return false
}
