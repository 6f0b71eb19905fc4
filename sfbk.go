// Package sfbk provides access to RIFF-based sound-bank files, the binary
// containers holding preset and instrument tables next to raw PCM sample
// data.
//
// The basic structure of a sound-bank file is:
//   - A "RIFF" chunk of type "sfbk".
//   - A "LIST" chunk of type "INFO" holding the bank metadata.
//   - A "LIST" chunk of type "sdta" holding the shared PCM buffer (a "smpl"
//     chunk of 16-bit sample words, optionally followed by an "sm24" chunk
//     of low-order bytes extending the samples to 24 bits).
//   - A "LIST" chunk of type "pdta" holding the nine fixed-width record
//     tables linking presets to instruments to samples.
//
// Decode interprets the raw tables into linked entities with explicit zone
// lists; Encode reassembles the tables and reproduces the original file
// byte for byte.
package sfbk

import (
	"os"

	"github.com/mewkiz/sfbk/sdta"
	"github.com/pkg/errors"
)

var (
	// ErrUnresolvedLink reports a cross-table row index with no entry in the
	// referenced table.
	ErrUnresolvedLink = errors.New("sfbk: unresolved link")
	// ErrUnknownReference reports a name-valued reference which resolves to
	// no assembled entity.
	ErrUnknownReference = errors.New("sfbk: unknown reference")
)

// A Bank is the semantic model of one sound-bank file: its metadata, its
// linked preset, instrument and sample entities, the captured terminator
// rows, and the shared PCM buffer.
type Bank struct {
	// Bank metadata from the INFO chunk, in stored order.
	Info Info
	// Presets in stored order; zone terminal references address Instruments
	// by slice index.
	Presets []Preset
	// Instruments in stored order; zone terminal references address Samples
	// by slice index.
	Instruments []Instrument
	// Samples in stored order.
	Samples []Sample
	// Captured sentinel rows of the record tables.
	Terminators Terminators
	// Shared PCM buffer.
	Data *sdta.Data
}

// A Version is the two-integer bank format version of the ifil and iver
// INFO fields.
type Version struct {
	Major uint16
	Minor uint16
}

// An InfoField is one INFO sub-chunk, carried with its exact payload so
// unrecognized fields survive a decode/encode cycle unchanged.
type InfoField struct {
	// Four character chunk identifier, e.g. "INAM".
	ID string
	// Exact chunk payload.
	Raw []byte
}

// Text returns the field payload as text, cut at the first zero byte.
func (f InfoField) Text() string {
	for i, c := range f.Raw {
		if c == 0 {
			return string(f.Raw[:i])
		}
	}
	return string(f.Raw)
}

// Version decodes the field payload as a two-integer version record.
func (f InfoField) Version() (Version, bool) {
	if len(f.Raw) != 4 {
		return Version{}, false
	}
	return Version{
		Major: uint16(f.Raw[0]) | uint16(f.Raw[1])<<8,
		Minor: uint16(f.Raw[2]) | uint16(f.Raw[3])<<8,
	}, true
}

// Info is the ordered INFO metadata of a bank.
type Info struct {
	Fields []InfoField
}

// Lookup returns the first INFO field with the given identifier.
func (info *Info) Lookup(id string) (InfoField, bool) {
	for _, f := range info.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return InfoField{}, false
}

// Name returns the bank name of the INAM field.
func (info *Info) Name() string {
	f, _ := info.Lookup("INAM")
	return f.Text()
}

// A Preset is a named patch: its header fields plus a zone list whose
// terminal references address instruments.
type Preset struct {
	// Preset name; at most 20 bytes encoded.
	Name string
	// MIDI preset and bank numbers.
	PresetNum uint16
	Bank      uint16
	// Reserved header fields, preserved verbatim.
	Library    uint32
	Genre      uint32
	Morphology uint32
	ZoneList
}

// An Instrument is a named layer of sample zones; zone terminal references
// address samples.
type Instrument struct {
	// Instrument name; at most 20 bytes encoded.
	Name string
	ZoneList
}

// Sample channel type tags of the sample header type field.
const (
	SampleTypeMono  = 0x0001
	SampleTypeRight = 0x0002
	SampleTypeLeft  = 0x0004
	SampleTypeROM   = 0x8000
)

// A Sample is one named sample header. Offsets are absolute sample-point
// positions within the shared PCM buffer.
type Sample struct {
	// Sample name; at most 20 bytes encoded.
	Name string
	// Absolute extent of the sample data, [Start, End).
	Start uint32
	End   uint32
	// Absolute loop points.
	LoopStart uint32
	LoopEnd   uint32
	// Sample rate in Hz.
	Rate uint32
	// Original MIDI key and cent correction.
	OriginalKey uint8
	Correction  int8
	// Row index of the stereo-linked partner sample, if any.
	Link uint16
	// Channel type tag; see SampleType constants.
	Type uint16
}

// Terminators captures the non-delimiter fields of each table's sentinel
// row. Real files carry non-zero reserved and name bytes there; they are
// format-significant and re-emitted on encode for byte exactness. The bag
// tables are absent: both their sentinel fields are range delimiters and
// are re-derived during assembly.
type Terminators struct {
	Preset     PresetTerminator
	PresetMod  Modulator
	PresetGen  Generator
	Instrument InstTerminator
	InstMod    Modulator
	InstGen    Generator
	Sample     Sample
}

// PresetTerminator holds the non-delimiter fields of the preset header
// sentinel row.
type PresetTerminator struct {
	Name       string
	PresetNum  uint16
	Bank       uint16
	Library    uint32
	Genre      uint32
	Morphology uint32
}

// InstTerminator holds the non-delimiter fields of the instrument header
// sentinel row.
type InstTerminator struct {
	Name string
}

// Parse reads the provided file and returns its decoded bank model.
func Parse(path string) (*Bank, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Decode(buf)
}

// WriteFile encodes the bank and writes its binary form to the provided
// file path. Nothing is written when encoding fails.
func (b *Bank) WriteFile(path string) error {
	buf, err := b.Encode()
	if err != nil {
		return err
	}
	return errors.WithStack(os.WriteFile(path, buf, 0o644))
}
