// Command sfbkorder rewrites the entity name lists of one descriptor
// directory into the order of another's, leaving all content untouched.
// Useful for diffing two converted banks whose entities match but whose
// stored row order differs.
//
// Usage:
//
//	sfbkorder [OPTION]... ORDER_DIR CONTENT_DIR
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/sfbk/desc"
)

func usage() {
	const use = `
Rewrite the name lists of CONTENT_DIR/bank.yaml into the order of ORDER_DIR/bank.yaml.

Usage:

	sfbkorder [OPTION]... ORDER_DIR CONTENT_DIR

Flags:
`
	fmt.Fprint(os.Stderr, use[1:])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if err := sfbkorder(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("%+v", err)
	}
}

func sfbkorder(orderDir, contentDir string) error {
	var order, content desc.BankFile
	if err := desc.Load(filepath.Join(orderDir, "bank.yaml"), &order); err != nil {
		return err
	}
	contentPath := filepath.Join(contentDir, "bank.yaml")
	if err := desc.Load(contentPath, &content); err != nil {
		return err
	}
	content.Presets = mergeOrder(order.Presets, content.Presets)
	content.Instruments = mergeOrder(order.Instruments, content.Instruments)
	content.Samples = mergeOrder(order.Samples, content.Samples)
	return desc.Dump(contentPath, &content)
}

// mergeOrder reorders the content names to follow the order list. Names
// absent from the order list keep their relative position at the end;
// order names absent from the content are skipped.
func mergeOrder(order, content []string) []string {
	known := make(map[string]bool, len(content))
	for _, name := range content {
		known[name] = true
	}
	var out []string
	taken := make(map[string]bool, len(content))
	for _, name := range order {
		if known[name] && !taken[name] {
			out = append(out, name)
			taken[name] = true
		}
	}
	for _, name := range content {
		if !taken[name] {
			out = append(out, name)
		}
	}
	return out
}
