package sfbk

import (
	"github.com/mewkiz/sfbk/pdta"
	"github.com/mewkiz/sfbk/riff"
	"github.com/mewkiz/sfbk/sdta"
	"github.com/pkg/errors"
)

// A decoder owns every derived table of one conversion. All tables are
// decoded in one deterministic pass before any linking happens; nothing is
// computed lazily.
type decoder struct {
	tables map[string][]pdta.Row
}

// Decode parses the provided buffer as a binary sound-bank file and returns
// its semantic model.
func Decode(buf []byte) (*Bank, error) {
	root, err := riff.Parse(buf)
	if err != nil {
		return nil, err
	}
	if root.ID != riff.IDRIFF || root.Type != "sfbk" {
		return nil, errors.Wrapf(riff.ErrMalformedContainer, "root chunk is %q type %q; expected RIFF type sfbk", root.DisplayID(), root.Type)
	}

	b := &Bank{}
	if err := b.decodeInfo(root); err != nil {
		return nil, err
	}
	if err := b.decodeData(root); err != nil {
		return nil, err
	}

	list := listChunk(root, "pdta")
	if list == nil {
		return nil, errors.Wrap(riff.ErrMalformedContainer, "missing LIST chunk of type pdta")
	}
	dec := &decoder{tables: make(map[string][]pdta.Row, len(pdta.Layouts))}
	for _, layout := range pdta.Layouts {
		leaf := list.Child(layout.Name)
		if leaf == nil {
			return nil, errors.Wrapf(riff.ErrMalformedContainer, "missing %s chunk", layout.Name)
		}
		rows, err := layout.Decode(leaf.Body)
		if err != nil {
			return nil, err
		}
		dec.tables[layout.Name] = rows
	}

	if err := dec.decodeSamples(b); err != nil {
		return nil, err
	}
	if err := dec.decodeInstruments(b); err != nil {
		return nil, err
	}
	if err := dec.decodePresets(b); err != nil {
		return nil, err
	}
	dec.decodeTerminators(b)
	return b, nil
}

// listChunk returns the LIST child of the root with the given type tag.
func listChunk(root *riff.Chunk, typ string) *riff.Chunk {
	for _, c := range root.Children {
		if c.ID == riff.IDLIST && c.Type == typ {
			return c
		}
	}
	return nil
}

func (b *Bank) decodeInfo(root *riff.Chunk) error {
	list := listChunk(root, "INFO")
	if list == nil {
		return errors.Wrap(riff.ErrMalformedContainer, "missing LIST chunk of type INFO")
	}
	for _, c := range list.Children {
		if c.IsContainer() {
			return errors.Wrapf(riff.ErrMalformedContainer, "INFO holds nested container %q", c.DisplayID())
		}
		b.Info.Fields = append(b.Info.Fields, InfoField{ID: c.ID, Raw: c.Body})
	}
	return nil
}

func (b *Bank) decodeData(root *riff.Chunk) error {
	list := listChunk(root, "sdta")
	if list == nil {
		return errors.Wrap(riff.ErrMalformedContainer, "missing LIST chunk of type sdta")
	}
	b.Data = &sdta.Data{}
	if smpl := list.Child("smpl"); smpl != nil {
		b.Data.Smpl = smpl.Body
	}
	if sm24 := list.Child("sm24"); sm24 != nil {
		b.Data.Sm24 = sm24.Body
	}
	return nil
}

// span is one explicit (start, length) row range, derived eagerly from the
// adjacent index fields of a header or bag table.
type span struct {
	start  int
	length int
}

// spans derives per-row index ranges from a table whose rows carry a start
// index into the next table down. The final row is the terminator; it
// supplies the exclusive upper bound of the last real row and gets no span
// of its own. limit is the row count of the referenced table's sentinel
// region, used for bounds checking.
func spans(rows []pdta.Row, field string, limit int) ([]span, error) {
	out := make([]span, 0, len(rows)-1)
	for i := 0; i+1 < len(rows); i++ {
		start := int(rows[i].Uint(field))
		end := int(rows[i+1].Uint(field))
		if start > end || end > limit {
			return nil, errors.Wrapf(pdta.ErrMalformedTable, "row %d: index range [%d, %d) outside table of %d rows", i, start, end, limit)
		}
		out = append(out, span{start: start, length: end - start})
	}
	return out, nil
}

// zoneLists slices the bag, generator and modulator tables of one entity
// family into per-entity zone lists.
func (dec *decoder) zoneLists(header, bag, gen, mod string, terminal Oper, limit int) ([]ZoneList, error) {
	bags := dec.tables[bag]
	gens := dec.tables[gen]
	mods := dec.tables[mod]

	bagSpans, err := spans(dec.tables[header], pdta.FieldBagIndex, len(bags)-1)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", header)
	}
	genSpans, err := spans(bags, pdta.FieldGenIndex, len(gens)-1)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", bag)
	}
	modSpans, err := spans(bags, pdta.FieldModIndex, len(mods)-1)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", bag)
	}

	lists := make([]ZoneList, 0, len(bagSpans))
	for i, bs := range bagSpans {
		zones := make([]Zone, 0, bs.length)
		for j := bs.start; j < bs.start+bs.length; j++ {
			var z Zone
			gs := genSpans[j]
			for _, row := range gens[gs.start : gs.start+gs.length] {
				z.Gens = append(z.Gens, Generator{
					Oper:   Oper(row.Uint(pdta.FieldOper)),
					Amount: row.Amount(pdta.FieldAmount),
				})
			}
			ms := modSpans[j]
			for _, row := range mods[ms.start : ms.start+ms.length] {
				z.Mods = append(z.Mods, modFromRow(row))
			}
			zones = append(zones, z)
		}
		zl, err := splitZones(zones, terminal)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", header, i)
		}
		for zi := range zl.Zones {
			ref, _ := zl.Zones[zi].terminalRef(terminal)
			if ref >= limit {
				return nil, errors.Wrapf(ErrUnresolvedLink, "%s row %d zone %d: %v index %d outside table of %d entries", header, i, zi, terminal, ref, limit)
			}
		}
		lists = append(lists, zl)
	}
	return lists, nil
}

func modFromRow(row pdta.Row) Modulator {
	return Modulator{
		SrcOper:    uint16(row.Uint(pdta.FieldSrcOper)),
		DestOper:   uint16(row.Uint(pdta.FieldDestOper)),
		Amount:     int16(row.Int(pdta.FieldAmount)),
		AmtSrcOper: uint16(row.Uint(pdta.FieldAmtSrcOper)),
		TransOper:  uint16(row.Uint(pdta.FieldTransOper)),
	}
}

func (dec *decoder) decodeSamples(b *Bank) error {
	rows := dec.tables["shdr"]
	b.Samples = make([]Sample, 0, len(rows)-1)
	for _, row := range rows[:len(rows)-1] {
		b.Samples = append(b.Samples, sampleFromRow(row))
	}
	return nil
}

func sampleFromRow(row pdta.Row) Sample {
	return Sample{
		Name:        row.Text(pdta.FieldName),
		Start:       uint32(row.Uint(pdta.FieldStart)),
		End:         uint32(row.Uint(pdta.FieldEnd)),
		LoopStart:   uint32(row.Uint(pdta.FieldLoopStart)),
		LoopEnd:     uint32(row.Uint(pdta.FieldLoopEnd)),
		Rate:        uint32(row.Uint(pdta.FieldRate)),
		OriginalKey: uint8(row.Uint(pdta.FieldOriginalKey)),
		Correction:  int8(row.Int(pdta.FieldCorrection)),
		Link:        uint16(row.Uint(pdta.FieldLink)),
		Type:        uint16(row.Uint(pdta.FieldType)),
	}
}

func (dec *decoder) decodeInstruments(b *Bank) error {
	rows := dec.tables["inst"]
	lists, err := dec.zoneLists("inst", "ibag", "igen", "imod", OperSampleID, len(b.Samples))
	if err != nil {
		return err
	}
	b.Instruments = make([]Instrument, 0, len(lists))
	for i, zl := range lists {
		b.Instruments = append(b.Instruments, Instrument{
			Name:     rows[i].Text(pdta.FieldName),
			ZoneList: zl,
		})
	}
	return nil
}

func (dec *decoder) decodePresets(b *Bank) error {
	rows := dec.tables["phdr"]
	lists, err := dec.zoneLists("phdr", "pbag", "pgen", "pmod", OperInstrument, len(b.Instruments))
	if err != nil {
		return err
	}
	b.Presets = make([]Preset, 0, len(lists))
	for i, zl := range lists {
		row := rows[i]
		b.Presets = append(b.Presets, Preset{
			Name:       row.Text(pdta.FieldName),
			PresetNum:  uint16(row.Uint(pdta.FieldPreset)),
			Bank:       uint16(row.Uint(pdta.FieldBank)),
			Library:    uint32(row.Uint(pdta.FieldLibrary)),
			Genre:      uint32(row.Uint(pdta.FieldGenre)),
			Morphology: uint32(row.Uint(pdta.FieldMorphology)),
			ZoneList:   zl,
		})
	}
	return nil
}

// decodeTerminators captures the non-delimiter fields of each sentinel row.
func (dec *decoder) decodeTerminators(b *Bank) {
	last := func(name string) pdta.Row {
		rows := dec.tables[name]
		return rows[len(rows)-1]
	}

	phdr := last("phdr")
	b.Terminators.Preset = PresetTerminator{
		Name:       phdr.Text(pdta.FieldName),
		PresetNum:  uint16(phdr.Uint(pdta.FieldPreset)),
		Bank:       uint16(phdr.Uint(pdta.FieldBank)),
		Library:    uint32(phdr.Uint(pdta.FieldLibrary)),
		Genre:      uint32(phdr.Uint(pdta.FieldGenre)),
		Morphology: uint32(phdr.Uint(pdta.FieldMorphology)),
	}
	b.Terminators.Instrument = InstTerminator{Name: last("inst").Text(pdta.FieldName)}

	pgen := last("pgen")
	b.Terminators.PresetGen = Generator{Oper: Oper(pgen.Uint(pdta.FieldOper)), Amount: pgen.Amount(pdta.FieldAmount)}
	igen := last("igen")
	b.Terminators.InstGen = Generator{Oper: Oper(igen.Uint(pdta.FieldOper)), Amount: igen.Amount(pdta.FieldAmount)}
	b.Terminators.PresetMod = modFromRow(last("pmod"))
	b.Terminators.InstMod = modFromRow(last("imod"))
	b.Terminators.Sample = sampleFromRow(last("shdr"))
}
