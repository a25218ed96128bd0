package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
)

// ExecResult is the outcome of Exec.
type ExecResult struct {
	ReturnCode int
	Stdout     string
	Stderr     string
}

// resolveEUID implements spec.md §4.4's EUID selection: explicit EUID
// wins; otherwise the owner uid of InstallerBin's abspath; otherwise the
// current effective uid.
func (p *BaseProvider) resolveEUID() int {
	if p.EUID != nil {
		return *p.EUID
	}
	if p.InstallerBin != "" {
		abspath := p.InstallerBin
		if !filepath.IsAbs(abspath) {
			if hp, ok := pathvalidate.BinAbspath(p.InstallerBin, p.PATH); ok {
				abspath = string(hp)
			}
		}
		if filepath.IsAbs(abspath) {
			if uid, err := fileOwnerUID(abspath); err == nil {
				return uid
			}
		}
	}
	return currentEUID()
}

// Exec runs bin with argv in cwd under the provider's resolved EUID,
// per spec.md §4.4's exec contract.
//
//   - bin is resolved via GetAbspath if it is a bare name.
//   - cwd must exist and be readable; an empty cwd defaults to the
//     process's current working directory.
//   - the child environment is a copy of the current environment with
//     PWD/HOME/LOGNAME/USER overridden from the passwd entry of EUID.
//   - privileges are dropped to (uid, gid) of EUID between fork and exec.
//   - in dry-run mode, no subprocess is started; a synthetic successful
//     result is returned with stderr "skipped (dry run)".
//   - the command line is emitted to p.Diagnostic, prefixed "DRY RUN: $"
//     or "$", unless p.Quiet.
func (p *BaseProvider) Exec(bin string, argv []string, cwd string) (*ExecResult, error) {
	resolvedBin := bin
	if !strings.Contains(bin, string(os.PathSeparator)) {
		if hp, ok, err := p.GetAbspath(pathvalidate.BinaryName(bin), false); err == nil && ok {
			resolvedBin = string(hp)
		}
	}

	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("provider: exec: %w", err)
		}
		cwd = wd
	}
	if _, err := pathvalidate.HostExists(cwd); err != nil {
		info, statErr := os.Stat(cwd)
		if statErr != nil || !info.IsDir() {
			return nil, fmt.Errorf("provider: exec: cwd %q is not readable: %w", cwd, err)
		}
	}

	p.emitDiagnostic(resolvedBin, argv)

	if p.DryRun {
		return &ExecResult{ReturnCode: 0, Stderr: "skipped (dry run)"}, nil
	}

	euid := p.resolveEUID()

	timeout := p.InstallTimeout
	if timeout <= 0 {
		timeout = DefaultInstallTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, resolvedBin, argv...)
	cmd.Dir = cwd
	cmd.Env = buildChildEnv(euid)

	if err := applyCredential(cmd, euid); err != nil && !p.Quiet {
		fmt.Fprintf(p.Diagnostic, "warning: could not drop privileges to uid %d: %v\n", euid, err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ReturnCode = exitErr.ExitCode()
	}

	if err != nil {
		if isPermissionDenied(result.Stderr) {
			return result, fmt.Errorf("%w: %s", ErrPermissionDenied, result.Stderr)
		}
		return result, &ExecError{Bin: resolvedBin, Args: argv, ExitCode: result.ReturnCode, Stdout: result.Stdout, Stderr: result.Stderr, Cause: err}
	}
	return result, nil
}

func (p *BaseProvider) emitDiagnostic(bin string, argv []string) {
	if p.Quiet {
		return
	}
	prefix := "$"
	if p.DryRun {
		prefix = "DRY RUN: $"
	}
	fmt.Fprintf(p.Diagnostic, "%s %s %s\n", prefix, bin, strings.Join(argv, " "))
}

// isPermissionDenied reports whether stderr carries a denial pattern,
// distinguishing ErrPermissionDenied from a generic ExecError per
// spec.md §7.
func isPermissionDenied(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "permission denied")
}

// buildChildEnv copies the current environment and overrides
// PWD/HOME/LOGNAME/USER from the passwd entry of euid.
func buildChildEnv(euid int) []string {
	env := os.Environ()
	if u, err := user.LookupId(strconv.Itoa(euid)); err == nil {
		overrides := map[string]string{
			"HOME":    u.HomeDir,
			"LOGNAME": u.Username,
			"USER":    u.Username,
		}
		out := make([]string, 0, len(env)+len(overrides))
		seen := make(map[string]bool, len(overrides))
		for _, kv := range env {
			key := kv
			if idx := strings.IndexByte(kv, '='); idx >= 0 {
				key = kv[:idx]
			}
			if v, ok := overrides[key]; ok {
				out = append(out, key+"="+v)
				seen[key] = true
				continue
			}
			out = append(out, kv)
		}
		for k, v := range overrides {
			if !seen[k] {
				out = append(out, k+"="+v)
			}
		}
		env = out
	}
	if wd, err := os.Getwd(); err == nil {
		env = append(env, "PWD="+wd)
	}
	return env
}
