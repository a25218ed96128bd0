//go:build unix

package provider

import (
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
)

// currentEUID returns the process's current effective uid.
func currentEUID() int {
	return syscall.Geteuid()
}

// fileOwnerUID returns the owning uid of path.
func fileOwnerUID(path string) (int, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return 0, err
	}
	return int(st.Uid), nil
}

// applyCredential sets cmd's process credentials so the child drops to
// euid/the matching gid between fork and exec, per spec.md §4.4 and the
// POSIX note in §9. A no-op if euid already matches the current uid.
func applyCredential(cmd *exec.Cmd, euid int) error {
	if euid == currentEUID() {
		return nil
	}
	gid, err := primaryGID(euid)
	if err != nil {
		return err
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{Uid: uint32(euid), Gid: uint32(gid)},
	}
	return nil
}

// primaryGID looks up uid's primary group via the passwd database, falling
// back to the current process's gid if uid has no passwd entry.
func primaryGID(uid int) (int, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return syscall.Getegid(), nil
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return syscall.Getegid(), nil
	}
	return gid, nil
}
