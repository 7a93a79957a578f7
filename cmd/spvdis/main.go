// spvdis - SPIR-V disassembler
// Prints spvasm-style text and, with -resources, the descriptor bindings
// a module declares.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/shaderpipe/spvbin"
)

var (
	resources = flag.Bool("resources", false, "list entry points and resource bindings instead of instructions")
	strip     = flag.Bool("strip", false, "remove unreferenced module-scope objects first")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: spvdis [options] [file.spv ...]\n\nReads stdin when no file is given.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	status := 0
	for _, path := range paths {
		if err := dump(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "spvdis: %s: %v\n", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func dump(w io.Writer, path string) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	m, err := spvbin.FromBytes(data)
	if err != nil {
		return err
	}
	if *strip {
		if m, err = spvbin.StripDeadObjects(m); err != nil {
			return err
		}
	}
	if *resources {
		return listResources(w, m)
	}
	return spvbin.Disassemble(w, m)
}

func listResources(w io.Writer, m *spvbin.Module) error {
	eps, err := m.EntryPoints()
	if err != nil {
		return err
	}
	for _, ep := range eps {
		fmt.Fprintf(w, "entry %s %s\n", spvbin.ExecutionModelName(ep.Model), ep.Name)
	}

	res, err := m.Resources()
	if err != nil {
		return err
	}
	for _, r := range res {
		if !r.HasBinding {
			fmt.Fprintf(w, "%-24s %-16s unbound\n", r.Name, r.Kind)
			continue
		}
		fmt.Fprintf(w, "%-24s %-16s set=%d binding=%d\n", r.Name, r.Kind, r.Set, r.Binding)
	}
	return nil
}
