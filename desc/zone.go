package desc

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A PresetFile is one preset descriptor.
type PresetFile struct {
	Name       string     `yaml:"name"`
	Preset     uint16     `yaml:"preset"`
	Bank       uint16     `yaml:"bank"`
	Library    uint32     `yaml:"library,omitempty"`
	Genre      uint32     `yaml:"genre,omitempty"`
	Morphology uint32     `yaml:"morphology,omitempty"`
	Global     *ZoneDesc  `yaml:"global,omitempty"`
	Zones      []ZoneDesc `yaml:"zones"`
}

// An InstrumentFile is one instrument descriptor.
type InstrumentFile struct {
	Name   string     `yaml:"name"`
	Global *ZoneDesc  `yaml:"global,omitempty"`
	Zones  []ZoneDesc `yaml:"zones"`
}

// A ZoneDesc is one zone: its generators in stored order and its modifiers
// in stored order.
type ZoneDesc struct {
	Gens []GenEntry `yaml:"gens,omitempty"`
	Mods []ModDesc  `yaml:"mods,omitempty"`
}

// A GenEntry is one generator, rendered as a single-key mapping from
// operator name to amount. The amount is an integer for value-kind
// operators, a "low-high" string for range-kind operators, and a referenced
// entity name for the terminal instrument and sampleID operators.
type GenEntry struct {
	Name  string
	Value interface{}
}

// Int returns the amount as an integer.
func (e *GenEntry) Int() (int, bool) {
	v, ok := e.Value.(int)
	return v, ok
}

// Text returns the amount as a string.
func (e *GenEntry) Text() (string, bool) {
	v, ok := e.Value.(string)
	return v, ok
}

// MarshalYAML encodes the entry as a single-key mapping.
func (e GenEntry) MarshalYAML() (interface{}, error) {
	var key, val yaml.Node
	if err := key.Encode(e.Name); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := val.Encode(e.Value); err != nil {
		return nil, errors.WithStack(err)
	}
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{&key, &val},
	}, nil
}

// UnmarshalYAML decodes a single-key mapping into the entry, keeping the
// amount as an integer or string per its YAML scalar form.
func (e *GenEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return errors.Errorf("desc: generator entry must be a single-key mapping (line %d)", n.Line)
	}
	if err := n.Content[0].Decode(&e.Name); err != nil {
		return errors.WithStack(err)
	}
	var v interface{}
	if err := n.Content[1].Decode(&v); err != nil {
		return errors.WithStack(err)
	}
	switch v.(type) {
	case int, string:
		e.Value = v
	default:
		return errors.Errorf("desc: generator %q has invalid amount type %T (line %d)", e.Name, v, n.Line)
	}
	return nil
}

// A ModDesc is one modifier row, five 16-bit fields rendered as integers.
type ModDesc struct {
	Src    uint16 `yaml:"src"`
	Dest   uint16 `yaml:"dest"`
	Amount int16  `yaml:"amount"`
	AmtSrc uint16 `yaml:"amt-src"`
	Trans  uint16 `yaml:"trans"`
}
