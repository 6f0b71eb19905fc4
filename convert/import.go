package convert

import (
	"path/filepath"

	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/desc"
	"github.com/mewkiz/sfbk/sdta"
	"github.com/mewkiz/sfbk/wave"
	"github.com/pkg/errors"
)

// Import reads a descriptor directory and returns the reassembled bank
// model. Name references are resolved to freshly assigned row indices in a
// fixed build order, samples before instruments before presets.
func Import(dir string) (*sfbk.Bank, error) {
	var bf desc.BankFile
	if err := desc.Load(filepath.Join(dir, bankFile), &bf); err != nil {
		return nil, err
	}

	descs := make(map[string]*desc.SampleFile, len(bf.Samples))
	loadSample := func(name string) error {
		d := new(desc.SampleFile)
		if err := desc.Load(filepath.Join(dir, sampleDir, name+".yaml"), d); err != nil {
			return err
		}
		descs[name] = d
		return nil
	}
	for _, name := range bf.Samples {
		if err := loadSample(name); err != nil {
			return nil, err
		}
	}
	// Hidden segments appear in the sequence only.
	for _, e := range bf.Sequence {
		if e.Gap != nil || e.Name == sdta.LeadName {
			continue
		}
		if _, ok := descs[e.Name]; !ok {
			if err := loadSample(e.Name); err != nil {
				return nil, err
			}
		}
	}
	has24 := false
	for _, d := range descs {
		if d.Checksum != nil && d.Checksum.Sm24 != "" {
			has24 = true
		}
	}

	items, err := sequenceItems(dir, bf.Sequence, descs, has24)
	if err != nil {
		return nil, err
	}
	data, offsets, err := sdta.Rebuild(items, has24)
	if err != nil {
		return nil, err
	}

	b := &sfbk.Bank{
		Data:        data,
		Terminators: termFromDesc(&bf.Terminators),
	}
	for _, d := range bf.Info {
		f, err := infoField(d)
		if err != nil {
			return nil, err
		}
		b.Info.Fields = append(b.Info.Fields, f)
	}

	sampleIdx := make(map[string]int, len(bf.Samples))
	for i, name := range bf.Samples {
		sampleIdx[name] = i
	}
	for _, name := range bf.Samples {
		s, err := sampleFromDesc(name, descs[name], offsets, sampleIdx)
		if err != nil {
			return nil, err
		}
		b.Samples = append(b.Samples, s)
	}

	instIdx := make(map[string]int, len(bf.Instruments))
	for i, name := range bf.Instruments {
		instIdx[name] = i
	}
	for _, name := range bf.Instruments {
		var f desc.InstrumentFile
		if err := desc.Load(filepath.Join(dir, instDir, name+".yaml"), &f); err != nil {
			return nil, err
		}
		zl, err := zoneListFromDesc(f.Global, f.Zones, sfbk.OperSampleID, sampleIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "instrument %q", name)
		}
		b.Instruments = append(b.Instruments, sfbk.Instrument{Name: f.Name, ZoneList: zl})
	}

	for _, name := range bf.Presets {
		var f desc.PresetFile
		if err := desc.Load(filepath.Join(dir, presetDir, name+".yaml"), &f); err != nil {
			return nil, err
		}
		zl, err := zoneListFromDesc(f.Global, f.Zones, sfbk.OperInstrument, instIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "preset %q", name)
		}
		b.Presets = append(b.Presets, sfbk.Preset{
			Name:       f.Name,
			PresetNum:  f.Preset,
			Bank:       f.Bank,
			Library:    f.Library,
			Genre:      f.Genre,
			Morphology: f.Morphology,
			ZoneList:   zl,
		})
	}
	return b, nil
}

// sequenceItems loads the segment audio files and pairs each with its
// recorded digests, in sequence order.
func sequenceItems(dir string, seq []desc.SeqEntry, descs map[string]*desc.SampleFile, has24 bool) ([]sdta.Item, error) {
	var items []sdta.Item
	for _, e := range seq {
		if e.Gap != nil {
			gap := *e.Gap
			items = append(items, sdta.Item{Override: &gap})
			continue
		}
		if e.Name == sdta.LeadName {
			item := sdta.Item{Name: sdta.LeadName, SmplSum: sdta.Digest(nil)}
			if has24 {
				item.Sm24Sum = sdta.Digest(nil)
			}
			items = append(items, item)
			continue
		}
		d, ok := descs[e.Name]
		if !ok {
			return nil, errors.Wrapf(sfbk.ErrUnknownReference, "sequence segment %q", e.Name)
		}
		if d.Segment != "" {
			return nil, errors.Errorf("convert: sequence segment %q aliases %q and carries no audio", e.Name, d.Segment)
		}
		if d.Checksum == nil {
			return nil, errors.Errorf("convert: sequence segment %q lacks a checksum record", e.Name)
		}
		smpl, sm24, err := wave.Read(filepath.Join(dir, sampleDir, e.Name+".wav"), d.Rate, has24)
		if err != nil {
			return nil, err
		}
		if uint32(len(smpl)/2) != d.Checksum.Length {
			return nil, errors.Errorf("convert: segment %q audio has %d points, descriptor declares %d", e.Name, len(smpl)/2, d.Checksum.Length)
		}
		items = append(items, sdta.Item{
			Name:    e.Name,
			Smpl:    smpl,
			Sm24:    sm24,
			SmplSum: d.Checksum.Smpl,
			Sm24Sum: d.Checksum.Sm24,
		})
	}
	return items, nil
}

// sampleFromDesc builds one sample header row, rebasing its offsets onto
// the rebuilt buffer.
func sampleFromDesc(name string, d *desc.SampleFile, offsets map[string]uint32, sampleIdx map[string]int) (sfbk.Sample, error) {
	segName := name
	if d.Segment != "" {
		segName = d.Segment
	}
	start, ok := offsets[segName]
	if !ok {
		return sfbk.Sample{}, errors.Wrapf(sfbk.ErrUnknownReference, "sample %q segment %q", name, segName)
	}
	typ, ok := desc.ChannelType(d.Channel)
	if !ok {
		return sfbk.Sample{}, errors.Errorf("convert: sample %q has invalid channel tag %q", name, d.Channel)
	}
	s := sfbk.Sample{
		Name:        d.Name,
		Start:       start,
		End:         start + d.Length,
		LoopStart:   uint32(int64(start) + d.LoopStart),
		LoopEnd:     uint32(int64(start) + d.LoopEnd),
		Rate:        d.Rate,
		OriginalKey: d.OriginalKey,
		Correction:  d.Correction,
		Type:        typ,
	}
	if d.Link != "" {
		idx, ok := sampleIdx[d.Link]
		if !ok {
			return sfbk.Sample{}, errors.Wrapf(sfbk.ErrUnknownReference, "sample %q link %q", name, d.Link)
		}
		s.Link = uint16(idx)
	} else {
		s.Link = d.LinkIndex
	}
	return s, nil
}

func zoneListFromDesc(global *desc.ZoneDesc, zones []desc.ZoneDesc, terminal sfbk.Oper, refIndex map[string]int) (sfbk.ZoneList, error) {
	var zl sfbk.ZoneList
	if global != nil {
		z, err := zoneFromDesc(global, terminal, refIndex)
		if err != nil {
			return sfbk.ZoneList{}, err
		}
		zl.Global = &z
	}
	for i := range zones {
		z, err := zoneFromDesc(&zones[i], terminal, refIndex)
		if err != nil {
			return sfbk.ZoneList{}, err
		}
		zl.Zones = append(zl.Zones, z)
	}
	return zl, nil
}
