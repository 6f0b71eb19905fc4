package sfbk

import (
	"github.com/mewkiz/sfbk/pdta"
	"github.com/mewkiz/sfbk/riff"
	"github.com/pkg/errors"
)

// Encode assembles the bank's record tables and serializes the complete
// binary container. Encode is the inverse of Decode: a decoded bank encodes
// back to the original file byte for byte.
func (b *Bank) Encode() ([]byte, error) {
	root := &riff.Chunk{ID: riff.IDRIFF, Type: "sfbk"}

	info := &riff.Chunk{ID: riff.IDLIST, Type: "INFO", IsList: true}
	for _, f := range b.Info.Fields {
		info.Children = append(info.Children, &riff.Chunk{ID: f.ID, Body: f.Raw})
	}
	root.Children = append(root.Children, info)

	data := &riff.Chunk{ID: riff.IDLIST, Type: "sdta", IsList: true}
	if b.Data != nil {
		if b.Data.Smpl != nil {
			data.Children = append(data.Children, &riff.Chunk{ID: "smpl", Body: b.Data.Smpl})
		}
		if b.Data.Sm24 != nil {
			data.Children = append(data.Children, &riff.Chunk{ID: "sm24", Body: b.Data.Sm24})
		}
	}
	root.Children = append(root.Children, data)

	pdtaList, err := b.assemble()
	if err != nil {
		return nil, err
	}
	root.Children = append(root.Children, pdtaList)
	return root.Serialize(), nil
}

// assemble rebuilds the nine record tables from the entity model and frames
// them as the pdta LIST chunk. Assembly re-derives every index field the
// decode direction consumed: bag start indices while walking entities, then
// generator and modulator start indices while walking the completed bag
// array, with trailing terminator rows closing each table.
func (b *Bank) assemble() (*riff.Chunk, error) {
	asm := &assembler{tables: make(map[string][]pdta.Row, len(pdta.Layouts))}

	// Preset family.
	var presetZones []*Zone
	for i := range b.Presets {
		p := &b.Presets[i]
		row := pdta.PresetHeader.NewRow()
		row.SetText(pdta.FieldName, p.Name)
		row.SetUint(pdta.FieldPreset, uint64(p.PresetNum))
		row.SetUint(pdta.FieldBank, uint64(p.Bank))
		row.SetUint(pdta.FieldBagIndex, uint64(len(presetZones)))
		row.SetUint(pdta.FieldLibrary, uint64(p.Library))
		row.SetUint(pdta.FieldGenre, uint64(p.Genre))
		row.SetUint(pdta.FieldMorphology, uint64(p.Morphology))
		asm.append("phdr", row)
		var err error
		presetZones, err = appendZones(presetZones, &p.ZoneList, OperInstrument, len(b.Instruments), p.Name)
		if err != nil {
			return nil, err
		}
	}
	term := pdta.PresetHeader.NewRow()
	term.SetText(pdta.FieldName, b.Terminators.Preset.Name)
	term.SetUint(pdta.FieldPreset, uint64(b.Terminators.Preset.PresetNum))
	term.SetUint(pdta.FieldBank, uint64(b.Terminators.Preset.Bank))
	term.SetUint(pdta.FieldBagIndex, uint64(len(presetZones)))
	term.SetUint(pdta.FieldLibrary, uint64(b.Terminators.Preset.Library))
	term.SetUint(pdta.FieldGenre, uint64(b.Terminators.Preset.Genre))
	term.SetUint(pdta.FieldMorphology, uint64(b.Terminators.Preset.Morphology))
	asm.append("phdr", term)
	asm.bags("pbag", "pgen", "pmod", presetZones, b.Terminators.PresetGen, b.Terminators.PresetMod)

	// Instrument family.
	var instZones []*Zone
	for i := range b.Instruments {
		inst := &b.Instruments[i]
		row := pdta.InstHeader.NewRow()
		row.SetText(pdta.FieldName, inst.Name)
		row.SetUint(pdta.FieldBagIndex, uint64(len(instZones)))
		asm.append("inst", row)
		var err error
		instZones, err = appendZones(instZones, &inst.ZoneList, OperSampleID, len(b.Samples), inst.Name)
		if err != nil {
			return nil, err
		}
	}
	iterm := pdta.InstHeader.NewRow()
	iterm.SetText(pdta.FieldName, b.Terminators.Instrument.Name)
	iterm.SetUint(pdta.FieldBagIndex, uint64(len(instZones)))
	asm.append("inst", iterm)
	asm.bags("ibag", "igen", "imod", instZones, b.Terminators.InstGen, b.Terminators.InstMod)

	// Sample headers.
	for i := range b.Samples {
		asm.append("shdr", sampleRow(&b.Samples[i]))
	}
	asm.append("shdr", sampleRow(&b.Terminators.Sample))

	list := &riff.Chunk{ID: riff.IDLIST, Type: "pdta", IsList: true}
	for _, layout := range pdta.Layouts {
		payload, err := layout.Encode(asm.tables[layout.Name])
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, &riff.Chunk{ID: layout.Name, Body: payload})
	}
	return list, nil
}

// appendZones appends an entity's global zone (if present) followed by its
// local zones to the bag order, validating that every local zone closes
// with an in-range terminal reference.
func appendZones(bags []*Zone, zl *ZoneList, terminal Oper, limit int, owner string) ([]*Zone, error) {
	if zl.Global != nil {
		if _, ok := zl.Global.terminalRef(terminal); ok {
			return nil, errors.Wrapf(ErrUnexpectedGlobalZone, "%q: global zone ends in terminal generator %v", owner, terminal)
		}
		bags = append(bags, zl.Global)
	}
	for i := range zl.Zones {
		z := &zl.Zones[i]
		ref, ok := z.terminalRef(terminal)
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedGlobalZone, "%q: zone %d lacks terminal generator %v", owner, i, terminal)
		}
		if ref >= limit {
			return nil, errors.Wrapf(ErrUnresolvedLink, "%q: zone %d: %v index %d outside table of %d entries", owner, i, terminal, ref, limit)
		}
		bags = append(bags, z)
	}
	return bags, nil
}

// An assembler accretes the record tables of one encode pass.
type assembler struct {
	tables map[string][]pdta.Row
}

func (asm *assembler) append(table string, row pdta.Row) {
	row.Index = len(asm.tables[table])
	asm.tables[table] = append(asm.tables[table], row)
}

// bags walks a completed bag order, recording each zone's generator and
// modulator start indices, then appends the family's terminator rows.
func (asm *assembler) bags(bag, gen, mod string, zones []*Zone, genTerm Generator, modTerm Modulator) {
	bagLayout, genLayout, modLayout := pdta.PresetBag, pdta.PresetGen, pdta.PresetMod
	if bag == "ibag" {
		bagLayout, genLayout, modLayout = pdta.InstBag, pdta.InstGen, pdta.InstMod
	}

	for _, z := range zones {
		row := bagLayout.NewRow()
		row.SetUint(pdta.FieldGenIndex, uint64(len(asm.tables[gen])))
		row.SetUint(pdta.FieldModIndex, uint64(len(asm.tables[mod])))
		asm.append(bag, row)
		for _, g := range z.Gens {
			gr := genLayout.NewRow()
			gr.SetUint(pdta.FieldOper, uint64(g.Oper))
			gr.SetAmount(pdta.FieldAmount, g.Amount)
			asm.append(gen, gr)
		}
		for _, m := range z.Mods {
			asm.append(mod, modRow(modLayout, m))
		}
	}

	// The terminator bag row bounds the last zone's ranges; the generator
	// and modulator terminators close their own tables.
	row := bagLayout.NewRow()
	row.SetUint(pdta.FieldGenIndex, uint64(len(asm.tables[gen])))
	row.SetUint(pdta.FieldModIndex, uint64(len(asm.tables[mod])))
	asm.append(bag, row)

	gr := genLayout.NewRow()
	gr.SetUint(pdta.FieldOper, uint64(genTerm.Oper))
	gr.SetAmount(pdta.FieldAmount, genTerm.Amount)
	asm.append(gen, gr)
	asm.append(mod, modRow(modLayout, modTerm))
}

func modRow(layout *pdta.Layout, m Modulator) pdta.Row {
	row := layout.NewRow()
	row.SetUint(pdta.FieldSrcOper, uint64(m.SrcOper))
	row.SetUint(pdta.FieldDestOper, uint64(m.DestOper))
	row.SetInt(pdta.FieldAmount, int64(m.Amount))
	row.SetUint(pdta.FieldAmtSrcOper, uint64(m.AmtSrcOper))
	row.SetUint(pdta.FieldTransOper, uint64(m.TransOper))
	return row
}

func sampleRow(s *Sample) pdta.Row {
	row := pdta.SampleHeader.NewRow()
	row.SetText(pdta.FieldName, s.Name)
	row.SetUint(pdta.FieldStart, uint64(s.Start))
	row.SetUint(pdta.FieldEnd, uint64(s.End))
	row.SetUint(pdta.FieldLoopStart, uint64(s.LoopStart))
	row.SetUint(pdta.FieldLoopEnd, uint64(s.LoopEnd))
	row.SetUint(pdta.FieldRate, uint64(s.Rate))
	row.SetUint(pdta.FieldOriginalKey, uint64(s.OriginalKey))
	row.SetInt(pdta.FieldCorrection, int64(s.Correction))
	row.SetUint(pdta.FieldLink, uint64(s.Link))
	row.SetUint(pdta.FieldType, uint64(s.Type))
	return row
}
