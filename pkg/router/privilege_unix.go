//go:build unix

package router

import "golang.org/x/sys/unix"

func isPrivileged() bool {
	return unix.Geteuid() == 0
}
