// Package wintool locates the MSVC toolchain (cl.exe, its headers, and its
// import libraries) on Windows using the same registry/vswhere based search
// that Visual Studio's own `vcvars64.bat` performs, without requiring a
// developer command prompt to be active.
package wintool

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// VCToolPaths represents a `cl.exe` instance with all its VC paths.
type VCToolPaths struct {
	ToolPath    string
	BinPath     string
	DyLibPath   string
	LibPath     string
	IncludePath string
}

// Toolchain is a fully resolved MSVC toolchain: the path to `cl.exe` plus
// every bin/lib/include directory (VC tools and Windows/UCRT SDKs) needed to
// run it outside of a developer command prompt.
type Toolchain struct {
	ClPath       string
	BinPaths     []string
	LibPaths     []string
	IncludePaths []string
}

// ErrNotWindows is returned by FindMSVC when called on a non-Windows host:
// the registry/vswhere based search is unimplemented
// there and fails deterministically rather than guessing.
var ErrNotWindows = errors.New("wintool: MSVC discovery is only available on Windows")

// FindMSVC locates `cl.exe` and the full set of include/lib paths (VC tools
// plus the Windows 10/11 SDK and UCRT) needed to compile and link against it.
func FindMSVC(targetArch string) (*Toolchain, error) {
	if runtime.GOOS != "windows" {
		return nil, ErrNotWindows
	}

	instances, ok := findVS15PlusInstances(targetArch)
	if !ok {
		return nil, errors.New("wintool: missing MSVC build tools (no Visual Studio 15+ instance found)")
	}

	toolVersions := make(map[string]*VCToolPaths)
	for _, instance := range instances {
		if tool, ok := findToolInVS15PlusInstance(instance.InstallPath, targetArch); ok {
			toolVersions[instance.Version] = tool
		}
	}

	var vctool *VCToolPaths
	switch len(toolVersions) {
	case 0:
		return nil, errors.New("wintool: unable to locate `cl.exe` in any installed VS instance")
	case 1:
		for _, itool := range toolVersions {
			vctool = itool
		}
	default:
		var latestVersionN uint64
		for version, itool := range toolVersions {
			if versionN := getVersionInt(version); versionN > latestVersionN {
				vctool = itool
				latestVersionN = versionN
			}
		}
	}

	toolBuilder := newToolCmdBuilder(vctool)

	if err := addSDKs(toolBuilder, targetArch); err != nil {
		return nil, err
	}

	return &Toolchain{
		ClPath:       vctool.ToolPath,
		BinPaths:     toolBuilder.BinPaths,
		LibPaths:     toolBuilder.LibPaths,
		IncludePaths: toolBuilder.IncludePaths,
	}, nil
}

// findToolInVS15PlusInstance attempts to find `cl.exe` stored in the given VS
// 15+ instance for the desired target architecture.
func findToolInVS15PlusInstance(instancePath, targetArch string) (*VCToolPaths, bool) {
	versionFilePath := filepath.Join(instancePath, "VC/Auxiliary/Build/Microsoft.VCToolsVersion.default.txt")
	if _, err := os.Stat(versionFilePath); err != nil {
		return nil, false
	}

	versionFile, err := os.Open(versionFilePath)
	if err != nil {
		return nil, false
	}
	defer versionFile.Close()

	versionB, err := ioutil.ReadAll(versionFile)
	if err != nil {
		return nil, false
	}

	version := strings.TrimSpace(string(versionB))

	basePath := filepath.Join(instancePath, "VC/Tools/MSVC/", version)

	hostArch := hostArchToVCHostSuffix[runtime.GOARCH]
	subDir := archToVS15PlusSubDir[targetArch]

	tool := &VCToolPaths{}
	tool.BinPath = filepath.Join(basePath, fmt.Sprintf("bin/Host%s/%s", hostArch, subDir))
	tool.DyLibPath = tool.BinPath
	tool.LibPath = filepath.Join(basePath, "lib/"+subDir)
	tool.IncludePath = filepath.Join(basePath, "include")
	tool.ToolPath = filepath.Join(tool.BinPath, "cl.exe")

	if _, err := os.Stat(tool.ToolPath); err != nil {
		return nil, false
	}

	return tool, true
}

// getVersionInt converts a VS version string to an integer so it can be
// compared.  Each of the "sub-versions" are encoded into corresponding bit
// positions in the integer.
func getVersionInt(versionString string) uint64 {
	versionComponents := make([]int, 4)
	for i, component := range strings.Split(versionString, ".") {
		if i >= 4 {
			break
		}

		v, err := strconv.Atoi(component)
		if err != nil {
			return 0
		}

		versionComponents[i] = v
	}

	var version uint64
	version = uint64(versionComponents[0]) << 48
	version |= (uint64(versionComponents[1]) & 255) << 32
	version |= (uint64(versionComponents[2]) & 65535) << 16
	version |= (uint64(versionComponents[3]) & 65535)

	return version
}
