package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Identify which build of the tools is running.
 *
 * Description:	The version itself comes from the linker:
 *
 *		go build -ldflags "-X 'github.com/doismellburning/mrfsk/src.MRFSK_VERSION=1.0'"
 *
 *		The revision and time come from the VCS stamp Go adds to
 *		the build info.  Verbose output adds the Go release and
 *		every module compiled in, which is what you want to
 *		know when two builds decode differently.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

var MRFSK_VERSION string

func build_setting(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

// Revision with a suffix if the tree wasn't clean.
func build_revision(bi *debug.BuildInfo) string {
	var revision = build_setting(bi, "vcs.revision", "UNKNOWN")

	var dirty, err = strconv.ParseBool(build_setting(bi, "vcs.modified", "INVALID"))
	switch {
	case err != nil:
		return revision + "-UNKNOWNDIRTY"
	case dirty:
		return revision + "-DIRTY"
	default:
		return revision
	}
}

/*------------------------------------------------------------------
 *
 * Name:	describe_build
 *
 * Inputs:	tool	- Name to print, e.g. "mrfsk-sink".
 *
 *		bi	- From debug.ReadBuildInfo, or nil.
 *
 *		verbose	- Add Go release and dependencies.
 *
 *------------------------------------------------------------------*/

func describe_build(tool string, bi *debug.BuildInfo, verbose bool) string {
	var sb strings.Builder

	var version = IfThenElse(MRFSK_VERSION != "", MRFSK_VERSION, "!UNKNOWN!")

	fmt.Fprintf(&sb, "%s - Version %s (revision %s, built at %s)\n",
		tool, version, build_revision(bi), build_setting(bi, "vcs.time", "UNKNOWN"))

	if !verbose {
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nGo: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	if bi == nil {
		return sb.String()
	}

	for _, dep := range bi.Deps {
		var d = IfThenElse(dep.Replace != nil, dep.Replace, dep)
		fmt.Fprintf(&sb, "  %s %s\n", d.Path, d.Version)
	}

	return sb.String()
}

func printVersion(tool string, verbose bool) {
	var bi, _ = debug.ReadBuildInfo()
	fmt.Print(describe_build(tool, bi, verbose))
}
