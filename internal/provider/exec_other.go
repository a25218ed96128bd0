//go:build !unix

package provider

import (
	"fmt"
	"os"
	"os/exec"
)

// currentEUID has no meaning without fork/exec privilege semantics; we
// treat the process's own identity as the only usable EUID.
func currentEUID() int {
	return os.Getuid()
}

func fileOwnerUID(path string) (int, error) {
	return 0, fmt.Errorf("provider: file ownership lookup unsupported on this platform")
}

// applyCredential is a no-op per spec.md §9: platforms without fork cannot
// drop privileges between fork and exec, so EUID selection reduces to an
// assertion that the current uid already matches.
func applyCredential(cmd *exec.Cmd, euid int) error {
	if euid != currentEUID() {
		return fmt.Errorf("provider: cannot run as uid %d on this platform (current uid %d)", euid, currentEUID())
	}
	return nil
}
