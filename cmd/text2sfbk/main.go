// Command text2sfbk converts directories of YAML descriptors and WAV sample
// files back to sound-bank files.
//
// Usage:
//
//	text2sfbk [OPTION]... DIR...
package main

import (
	"flag"
	"log"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/sfbk/convert"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite bank file if already present.
		force bool
		// output bank file path; derived from the directory path when empty.
		output string
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.StringVar(&output, "o", "", "output bank file path")
	flag.Parse()
	for _, dir := range flag.Args() {
		if err := text2sfbk(dir, output, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func text2sfbk(dir, output string, force bool) error {
	if output == "" {
		output = dir + ".sf2"
	}
	if !force && osutil.Exists(output) {
		return errors.Errorf("bank file %q already present; use -f flag to force overwrite", output)
	}
	bank, err := convert.Import(dir)
	if err != nil {
		return err
	}
	return bank.WriteFile(output)
}
