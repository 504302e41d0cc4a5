package wintool

import (
	"os"
	"os/exec"
	"strings"
)

// toolCmdBuilder accumulates the bin/lib/include search paths of a resolved
// MSVC installation before they are flattened into the environment of the
// `cl.exe` subprocess.
type toolCmdBuilder struct {
	ToolPath     string
	BinPaths     []string
	LibPaths     []string
	IncludePaths []string
}

// newToolCmdBuilder creates a new tool command builder from its VC tool paths.
func newToolCmdBuilder(vctool *VCToolPaths) *toolCmdBuilder {
	return &toolCmdBuilder{
		ToolPath:     vctool.ToolPath,
		BinPaths:     []string{vctool.BinPath, vctool.DyLibPath},
		LibPaths:     []string{vctool.LibPath},
		IncludePaths: []string{vctool.IncludePath},
	}
}

// Command builds an `*exec.Cmd` invoking `cl.exe` with PATH/LIB/INCLUDE set
// up to mirror what a VS developer command prompt would provide, merged with
// the parent process's own environment.
func (t *Toolchain) Command(args ...string) *exec.Cmd {
	cmd := exec.Command(t.ClPath, args...)
	cmd.Env = append(cmd.Env, "PATH="+strings.Join(t.BinPaths, ";"))
	cmd.Env = append(cmd.Env, "LIB="+strings.Join(t.LibPaths, ";"))
	cmd.Env = append(cmd.Env, "INCLUDE="+strings.Join(t.IncludePaths, ";"))
	addDefaultEnv(cmd)
	return cmd
}

// addDefaultEnv merges the parent process's environment variables into cmd,
// appending to any variable cmd already sets (PATH/LIB/INCLUDE) rather than
// overwriting it.
func addDefaultEnv(cmd *exec.Cmd) {
envloop:
	for _, envv := range os.Environ() {
		envvContent := strings.SplitN(envv, "=", 2)
		k := envvContent[0]

		for i, cenvv := range cmd.Env {
			cenvvContent := strings.SplitN(cenvv, "=", 2)
			ck, cv := cenvvContent[0], cenvvContent[1]

			if strings.EqualFold(k, ck) {
				cmd.Env[i] = ck + "=" + cv + ";" + envvContent[1]
				continue envloop
			}
		}

		cmd.Env = append(cmd.Env, envv)
	}
}
