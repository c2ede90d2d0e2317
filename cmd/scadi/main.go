/*
Scadi is an interactive SCAD session: it reads one statement (or block) at a
time from the console, evaluates it as a standalone script, and reports the
resulting geometry's stats and any diagnostics.

Usage:

	scadi [flags]

The flags are:

	-v, --version
		Give the current version of scadkernel and then exit.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline, even when stdin is a tty.

	-L, --library-path DIR
		Add DIR to the import search path. May be given multiple times.

Once started, each line is parsed and evaluated as a standalone script
sharing nothing with prior lines except the process's own caches; type
"QUIT" or send EOF (Ctrl-D) to exit.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	isattylib "github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dekarrin/scadkernel"
	"github.com/dekarrin/scadkernel/internal/version"
)

const (
	ExitSuccess = iota
	ExitInitError
)

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Give the version info")
	flagDirect   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of GNU readline")
	flagLibPaths = pflag.StringArrayP("library-path", "L", nil, "Add a directory to the import search path")
)

// lineReader is the minimal contract scadi needs from either an
// interactive (readline-backed) or direct (bufio-backed) input source.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

func main() {
	returnCode := ExitSuccess
	defer func() {
		if p := recover(); p != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", p))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Println(version.Current)
		return
	}

	reader, err := newLineReader(*flagDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitInitError
		return
	}
	defer reader.Close()

	runREPL(reader, *flagLibPaths)
}

func runREPL(r lineReader, libPaths []string) {
	for {
		line, err := r.ReadLine()
		if err != nil {
			if err != io.EOF {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") {
			return
		}

		evalOne(line, libPaths)
	}
}

func evalOne(line string, libPaths []string) {
	if !strings.HasSuffix(line, ";") && !strings.HasSuffix(line, "}") {
		line += ";"
	}

	parsed := scadkernel.Parse([]byte(line))
	for _, d := range parsed.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if !parsed.Success() {
		return
	}

	result := scadkernel.Evaluate(context.Background(), parsed.Tree, scadkernel.Options{LibraryPaths: libPaths})
	for _, d := range result.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if result.Mesh == nil {
		fmt.Println("(no geometry)")
		return
	}
	fmt.Printf("mesh: %d vertices, %d faces, bounds [%v .. %v]\n",
		result.Mesh.Stats.VertexCount, result.Mesh.Stats.FaceCount,
		result.Mesh.Bounds.Min, result.Mesh.Bounds.Max)
}

func newLineReader(forceDirect bool) (lineReader, error) {
	if forceDirect || !isatty() {
		return &directReader{r: bufio.NewReader(os.Stdin)}, nil
	}
	rl, err := readline.NewEx(&readline.Config{Prompt: "scad> "})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveReader{rl: rl}, nil
}

// directReader reads lines straight from a generic stream with no editing
// or history support; used when not attached to a tty or when forced.
type directReader struct {
	r *bufio.Reader
}

func (d *directReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return line, nil
}

func (d *directReader) Close() error { return nil }

// interactiveReader reads lines through GNU-readline-alike editing and
// history.
type interactiveReader struct {
	rl *readline.Instance
}

func (i *interactiveReader) ReadLine() (string, error) {
	return i.rl.Readline()
}

func (i *interactiveReader) Close() error { return i.rl.Close() }

func isatty() bool {
	return isattylib.IsTerminal(os.Stdin.Fd())
}
