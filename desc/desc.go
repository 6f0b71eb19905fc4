// Package desc declares the text descriptor shapes of a converted bank: one
// bank.yaml with the global metadata, ordered entity name lists, captured
// terminator records and the gap-aware sample sequence, plus one YAML file
// per preset, instrument and sample. The shapes preserve field and list
// order so a bank survives the text round trip byte for byte.
package desc

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A BankFile is the bank.yaml descriptor.
type BankFile struct {
	// Format version of the ifil INFO field.
	Version VersionDesc `yaml:"version"`
	// All INFO fields in stored order, the ifil field included.
	Info []InfoDesc `yaml:"info"`
	// Ordered entity name lists; list position is the stored row order.
	Presets     []string `yaml:"presets"`
	Instruments []string `yaml:"instruments"`
	Samples     []string `yaml:"samples"`
	// Buffer layout: segment names in buffer order, interleaved with gap
	// override markers.
	Sequence []SeqEntry `yaml:"sequence"`
	// Captured sentinel rows of the record tables.
	Terminators TermDesc `yaml:"terminators"`
}

// A VersionDesc is a two-integer version record.
type VersionDesc struct {
	Major uint16 `yaml:"major"`
	Minor uint16 `yaml:"minor"`
}

// An InfoDesc is one INFO field. Exactly one of Text, Version and Raw is
// set: Text when the payload is a canonically terminated string, Version for
// two-integer version fields, Raw (hex) when the payload matches neither.
type InfoDesc struct {
	ID      string       `yaml:"id"`
	Text    *string      `yaml:"text,omitempty"`
	Version *VersionDesc `yaml:"version,omitempty"`
	Raw     string       `yaml:"raw,omitempty"`
}

// A SeqEntry is one entry of the sample sequence: a segment name, or a gap
// override marker which sets the zero-point gap width for subsequent
// segments.
type SeqEntry struct {
	Name string
	Gap  *uint32
}

// MarshalYAML encodes a name entry as a plain scalar and an override entry
// as a single-key gap mapping.
func (e SeqEntry) MarshalYAML() (interface{}, error) {
	if e.Gap != nil {
		return map[string]uint32{"gap": *e.Gap}, nil
	}
	return e.Name, nil
}

// UnmarshalYAML decodes either entry form.
func (e *SeqEntry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		return errors.WithStack(n.Decode(&e.Name))
	case yaml.MappingNode:
		var v struct {
			Gap *uint32 `yaml:"gap"`
		}
		if err := n.Decode(&v); err != nil {
			return errors.WithStack(err)
		}
		if v.Gap == nil {
			return errors.Errorf("desc: sequence mapping entry lacks gap key (line %d)", n.Line)
		}
		e.Gap = v.Gap
		return nil
	}
	return errors.Errorf("desc: invalid sequence entry kind %d (line %d)", n.Kind, n.Line)
}

// A TermDesc captures the non-delimiter fields of each table's sentinel
// row.
type TermDesc struct {
	Preset     PresetTermDesc `yaml:"preset"`
	PresetMod  ModDesc        `yaml:"preset-mod"`
	PresetGen  GenTermDesc    `yaml:"preset-gen"`
	Instrument InstTermDesc   `yaml:"instrument"`
	InstMod    ModDesc        `yaml:"instrument-mod"`
	InstGen    GenTermDesc    `yaml:"instrument-gen"`
	Sample     SampleTermDesc `yaml:"sample"`
}

// A PresetTermDesc holds the preset header sentinel fields.
type PresetTermDesc struct {
	Name       string `yaml:"name"`
	Preset     uint16 `yaml:"preset"`
	Bank       uint16 `yaml:"bank"`
	Library    uint32 `yaml:"library"`
	Genre      uint32 `yaml:"genre"`
	Morphology uint32 `yaml:"morphology"`
}

// An InstTermDesc holds the instrument header sentinel fields.
type InstTermDesc struct {
	Name string `yaml:"name"`
}

// A GenTermDesc holds a generator table sentinel row verbatim.
type GenTermDesc struct {
	Oper   uint16 `yaml:"oper"`
	Amount uint16 `yaml:"amount"`
}

// A SampleTermDesc holds the sample header sentinel row verbatim, offsets
// included.
type SampleTermDesc struct {
	Name        string `yaml:"name"`
	Start       uint32 `yaml:"start"`
	End         uint32 `yaml:"end"`
	LoopStart   uint32 `yaml:"loop-start"`
	LoopEnd     uint32 `yaml:"loop-end"`
	Rate        uint32 `yaml:"rate"`
	OriginalKey uint8  `yaml:"original-key"`
	Correction  int8   `yaml:"correction"`
	Link        uint16 `yaml:"link"`
	Type        uint16 `yaml:"type"`
}

// Load reads the YAML file at path into v.
func Load(path string, v interface{}) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := yaml.Unmarshal(buf, v); err != nil {
		return errors.Wrapf(err, "unable to parse %q", path)
	}
	return nil
}

// Dump writes v as a YAML file at path.
func Dump(path string, v interface{}) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, buf, 0o644))
}
