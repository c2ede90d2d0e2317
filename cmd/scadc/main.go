/*
Scadc evaluates a SCAD script file and writes its resulting mesh as JSON.

It reads the named script, parses it, evaluates it, and prints the mesh
interchange structure (vertices, indices, normals, bounds, stats) to stdout
as JSON; any diagnostics are printed to stderr. Export to a rendering format
such as STL or OBJ is intentionally not this tool's job: it exists to
exercise the kernel and hand off a mesh to whatever consumes it next.

Usage:

	scadc [flags] FILE

The flags are:

	-v, --version
		Give the current version of scadkernel and then exit.

	-o, --out FILE
		Write the mesh JSON to FILE instead of stdout.

	-t, --timeout-ms N
		Override the evaluation job's default 30s deadline.

	--fn, --fa, --fs N
		Seed the $fn/$fa/$fs fragment defaults for the job.

	-L, --library-path DIR
		Add DIR to the import search path. May be given multiple times.
*/
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/scadkernel"
	"github.com/dekarrin/scadkernel/internal/version"
)

const (
	ExitSuccess = iota
	ExitSyntaxError
	ExitEvalError
	ExitIOError
)

var (
	flagVersion    = pflag.BoolP("version", "v", false, "Give the version info")
	flagOut        = pflag.StringP("out", "o", "", "Write mesh JSON to this file instead of stdout")
	flagTimeoutMS  = pflag.IntP("timeout-ms", "t", 0, "Override the default 30s evaluation deadline")
	flagFn         = pflag.Float64("fn", 0, "Seed $fn")
	flagFa         = pflag.Float64("fa", 0, "Seed $fa")
	flagFs         = pflag.Float64("fs", 0, "Seed $fs")
	flagLibPaths   = pflag.StringArrayP("library-path", "L", nil, "Add a directory to the import search path")
	flagPreview    = pflag.Bool("preview", false, "Bind $preview to true for this job")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *flagVersion {
		fmt.Println(version.Current)
		return ExitSuccess
	}

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scadc [flags] FILE")
		return ExitIOError
	}

	source, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitIOError
	}

	parsed := scadkernel.Parse(source)
	for _, d := range parsed.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if !parsed.Success() {
		return ExitSyntaxError
	}

	result := scadkernel.Evaluate(nil, parsed.Tree, scadkernel.Options{
		PreviewMode:      *flagPreview,
		TimeoutMS:        *flagTimeoutMS,
		FragmentDefaults: scadkernel.Fragments{Fn: *flagFn, Fa: *flagFa, Fs: *flagFs},
		LibraryPaths:     *flagLibPaths,
	})
	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if !result.Success() {
		return ExitEvalError
	}
	if result.Mesh == nil {
		fmt.Fprintln(os.Stderr, "no geometry produced")
		return ExitSuccess
	}

	out, err := json.MarshalIndent(result.Mesh, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: encode mesh: %s\n", err)
		return ExitIOError
	}

	if *flagOut == "" {
		fmt.Println(string(out))
		return ExitSuccess
	}
	if err := os.WriteFile(*flagOut, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: write %s: %s\n", *flagOut, err)
		return ExitIOError
	}
	return ExitSuccess
}
