// Package convert orchestrates the two conversion directions: a bank file
// becomes a directory of YAML descriptors plus one WAV file per sample
// segment, and such a directory becomes a bank file again, byte for byte.
package convert

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/desc"
	"github.com/mewkiz/sfbk/pdta"
	"github.com/pkg/errors"
)

// Descriptor directory layout.
const (
	bankFile  = "bank.yaml"
	presetDir = "preset"
	instDir   = "instrument"
	sampleDir = "sample"
)

// hiddenRate is the sample rate assigned to WAV files of hidden segments,
// which have no owning sample header to take a rate from.
const hiddenRate = 44100

// zoneDesc renders one zone. Terminal reference generators resolve their
// row index to the assigned name of the referenced entity; refNames is
// indexed by row.
func zoneDesc(z *sfbk.Zone, terminal sfbk.Oper, refNames []string) (desc.ZoneDesc, error) {
	var zd desc.ZoneDesc
	for _, g := range z.Gens {
		e := desc.GenEntry{Name: g.Oper.String()}
		switch {
		case g.Oper == terminal:
			idx := int(g.Amount.Uint16())
			if idx >= len(refNames) {
				return desc.ZoneDesc{}, errors.Wrapf(sfbk.ErrUnresolvedLink, "%v row index %d out of range", g.Oper, idx)
			}
			e.Value = refNames[idx]
		case g.Oper.Kind() == sfbk.KindRange:
			lo, hi := g.Amount.Range()
			e.Value = fmt.Sprintf("%d-%d", lo, hi)
		case g.Oper.Kind() == sfbk.KindIndex:
			// An index generator outside its own entity family has nothing to
			// reference; keep the raw value.
			e.Value = int(g.Amount.Uint16())
		default:
			e.Value = int(g.Amount.Int16())
		}
		zd.Gens = append(zd.Gens, e)
	}
	for _, m := range z.Mods {
		zd.Mods = append(zd.Mods, modDesc(m))
	}
	return zd, nil
}

// zoneFromDesc is the inverse of zoneDesc; refIndex maps assigned entity
// names to their row indices.
func zoneFromDesc(zd *desc.ZoneDesc, terminal sfbk.Oper, refIndex map[string]int) (sfbk.Zone, error) {
	var z sfbk.Zone
	for i := range zd.Gens {
		e := &zd.Gens[i]
		op, ok := sfbk.OperByName(e.Name)
		if !ok {
			return sfbk.Zone{}, errors.Errorf("convert: unknown generator operator %q", e.Name)
		}
		g := sfbk.Generator{Oper: op}
		switch {
		case op == terminal:
			name, ok := e.Text()
			if !ok {
				// Raw row index, for descriptors written by hand.
				v, _ := e.Int()
				g.Amount = pdta.Amount(uint16(v))
				break
			}
			idx, ok := refIndex[name]
			if !ok {
				return sfbk.Zone{}, errors.Wrapf(sfbk.ErrUnknownReference, "%v %q", op, name)
			}
			g.Amount = pdta.Amount(uint16(idx))
		case op.Kind() == sfbk.KindRange:
			s, ok := e.Text()
			if !ok {
				return sfbk.Zone{}, errors.Errorf("convert: generator %q amount must be a low-high range", e.Name)
			}
			lo, hi, err := parseRange(s)
			if err != nil {
				return sfbk.Zone{}, errors.Wrapf(err, "generator %q", e.Name)
			}
			g.Amount = pdta.AmountFromRange(lo, hi)
		default:
			v, ok := e.Int()
			if !ok {
				return sfbk.Zone{}, errors.Errorf("convert: generator %q amount must be an integer", e.Name)
			}
			if op.Kind() == sfbk.KindIndex {
				g.Amount = pdta.Amount(uint16(v))
				break
			}
			if v < -0x8000 || v > 0x7FFF {
				return sfbk.Zone{}, errors.Errorf("convert: generator %q amount %d out of range", e.Name, v)
			}
			g.Amount = pdta.AmountFromInt16(int16(v))
		}
		z.Gens = append(z.Gens, g)
	}
	for _, m := range zd.Mods {
		z.Mods = append(z.Mods, modFromDesc(m))
	}
	return z, nil
}

// parseRange parses a "low-high" range amount.
func parseRange(s string) (lo, hi uint8, err error) {
	l, h, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, errors.Errorf("convert: invalid range amount %q", s)
	}
	lv, err := strconv.ParseUint(l, 10, 8)
	if err != nil {
		return 0, 0, errors.Errorf("convert: invalid range amount %q", s)
	}
	hv, err := strconv.ParseUint(h, 10, 8)
	if err != nil {
		return 0, 0, errors.Errorf("convert: invalid range amount %q", s)
	}
	return uint8(lv), uint8(hv), nil
}

func modDesc(m sfbk.Modulator) desc.ModDesc {
	return desc.ModDesc{
		Src:    m.SrcOper,
		Dest:   m.DestOper,
		Amount: m.Amount,
		AmtSrc: m.AmtSrcOper,
		Trans:  m.TransOper,
	}
}

func modFromDesc(m desc.ModDesc) sfbk.Modulator {
	return sfbk.Modulator{
		SrcOper:    m.Src,
		DestOper:   m.Dest,
		Amount:     m.Amount,
		AmtSrcOper: m.AmtSrc,
		TransOper:  m.Trans,
	}
}

// infoDesc renders one INFO field: version form for the two-integer version
// fields, text form when the payload is a canonically terminated string,
// raw hex otherwise.
func infoDesc(f sfbk.InfoField) desc.InfoDesc {
	d := desc.InfoDesc{ID: f.ID}
	if f.ID == "ifil" || f.ID == "iver" {
		if v, ok := f.Version(); ok {
			d.Version = &desc.VersionDesc{Major: v.Major, Minor: v.Minor}
			return d
		}
	}
	if text := f.Text(); bytes.Equal(f.Raw, canonicalText(text)) {
		d.Text = &text
		return d
	}
	d.Raw = hex.EncodeToString(f.Raw)
	return d
}

// infoField is the inverse of infoDesc.
func infoField(d desc.InfoDesc) (sfbk.InfoField, error) {
	f := sfbk.InfoField{ID: d.ID}
	switch {
	case d.Version != nil:
		f.Raw = []byte{
			byte(d.Version.Major), byte(d.Version.Major >> 8),
			byte(d.Version.Minor), byte(d.Version.Minor >> 8),
		}
	case d.Text != nil:
		f.Raw = canonicalText(*d.Text)
	case d.Raw != "":
		raw, err := hex.DecodeString(d.Raw)
		if err != nil {
			return sfbk.InfoField{}, errors.Wrapf(err, "INFO field %q", d.ID)
		}
		f.Raw = raw
	}
	return f, nil
}

// canonicalText is the canonical payload of a text INFO field: the text, a
// terminating zero byte, and a second zero byte when needed to make the
// payload length even.
func canonicalText(s string) []byte {
	b := append([]byte(s), 0)
	if len(b)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func termDesc(t *sfbk.Terminators) desc.TermDesc {
	return desc.TermDesc{
		Preset: desc.PresetTermDesc{
			Name:       t.Preset.Name,
			Preset:     t.Preset.PresetNum,
			Bank:       t.Preset.Bank,
			Library:    t.Preset.Library,
			Genre:      t.Preset.Genre,
			Morphology: t.Preset.Morphology,
		},
		PresetMod:  modDesc(t.PresetMod),
		PresetGen:  desc.GenTermDesc{Oper: uint16(t.PresetGen.Oper), Amount: uint16(t.PresetGen.Amount)},
		Instrument: desc.InstTermDesc{Name: t.Instrument.Name},
		InstMod:    modDesc(t.InstMod),
		InstGen:    desc.GenTermDesc{Oper: uint16(t.InstGen.Oper), Amount: uint16(t.InstGen.Amount)},
		Sample: desc.SampleTermDesc{
			Name:        t.Sample.Name,
			Start:       t.Sample.Start,
			End:         t.Sample.End,
			LoopStart:   t.Sample.LoopStart,
			LoopEnd:     t.Sample.LoopEnd,
			Rate:        t.Sample.Rate,
			OriginalKey: t.Sample.OriginalKey,
			Correction:  t.Sample.Correction,
			Link:        t.Sample.Link,
			Type:        t.Sample.Type,
		},
	}
}

func termFromDesc(d *desc.TermDesc) sfbk.Terminators {
	return sfbk.Terminators{
		Preset: sfbk.PresetTerminator{
			Name:       d.Preset.Name,
			PresetNum:  d.Preset.Preset,
			Bank:       d.Preset.Bank,
			Library:    d.Preset.Library,
			Genre:      d.Preset.Genre,
			Morphology: d.Preset.Morphology,
		},
		PresetMod:  modFromDesc(d.PresetMod),
		PresetGen:  sfbk.Generator{Oper: sfbk.Oper(d.PresetGen.Oper), Amount: pdta.Amount(d.PresetGen.Amount)},
		Instrument: sfbk.InstTerminator{Name: d.Instrument.Name},
		InstMod:    modFromDesc(d.InstMod),
		InstGen:    sfbk.Generator{Oper: sfbk.Oper(d.InstGen.Oper), Amount: pdta.Amount(d.InstGen.Amount)},
		Sample: sfbk.Sample{
			Name:        d.Sample.Name,
			Start:       d.Sample.Start,
			End:         d.Sample.End,
			LoopStart:   d.Sample.LoopStart,
			LoopEnd:     d.Sample.LoopEnd,
			Rate:        d.Sample.Rate,
			OriginalKey: d.Sample.OriginalKey,
			Correction:  d.Sample.Correction,
			Link:        d.Sample.Link,
			Type:        d.Sample.Type,
		},
	}
}
