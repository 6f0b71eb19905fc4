// Command sfbk2text converts sound-bank files to directories of YAML
// descriptors and WAV sample files.
//
// Usage:
//
//	sfbk2text [OPTION]... FILE.sf2...
package main

import (
	"flag"
	"log"

	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/convert"
	"github.com/mewkiz/sfbk/sdta"
	"github.com/pkg/errors"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite output directory if already present.
		force bool
		// output directory path; derived from the bank path when empty.
		output string
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.StringVar(&output, "o", "", "output directory path")
	flag.Parse()
	for _, bankPath := range flag.Args() {
		if err := sfbk2text(bankPath, output, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

func sfbk2text(bankPath, output string, force bool) error {
	if output == "" {
		output = pathutil.TrimExt(bankPath)
	}
	if !force && osutil.Exists(output) {
		return errors.Errorf("output directory %q already present; use -f flag to force overwrite", output)
	}
	bank, err := sfbk.Parse(bankPath)
	if err != nil {
		return err
	}
	if name := bank.Info.Name(); name != "" {
		log.Printf("converting bank %q to %q", name, output)
	}
	// The pairing heuristic is advisory; it reports derivable left/right
	// groupings when the stored link metadata is unusable.
	if !convert.LinksConsistent(bank) {
		log.Printf("inconsistent stereo link metadata in %q; deriving pairs from zone layout", bankPath)
		pairs, warnings := sdta.Pair(convert.PairZones(bank))
		for _, warning := range warnings {
			log.Print(warning)
		}
		for left, right := range pairs {
			if left < right {
				log.Printf("derived stereo pair: %q / %q", bank.Samples[left].Name, bank.Samples[right].Name)
			}
		}
	}
	return convert.Export(bank, output)
}
