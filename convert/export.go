package convert

import (
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/desc"
	"github.com/mewkiz/sfbk/internal/fname"
	"github.com/mewkiz/sfbk/sdta"
	"github.com/mewkiz/sfbk/wave"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// writeLimit bounds the audio file write fan-out.
const writeLimit = 4

// Export writes the bank as a descriptor directory: bank.yaml, one YAML
// descriptor per preset, instrument and sample, and one WAV file per sample
// segment. Entity names are sanitized to file-safe form; case-insensitive
// collisions are resolved with numeric suffixes and logged.
func Export(b *sfbk.Bank, dir string) error {
	for _, sub := range []string{presetDir, instDir, sampleDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return errors.WithStack(err)
		}
	}
	names := assignNames(b)

	// Partition the shared buffer into named segments, one per distinct
	// sample start offset plus any discovered hidden filler.
	refs := make([]sdta.Ref, len(b.Samples))
	owner := make(map[uint32]int, len(b.Samples))
	for i, s := range b.Samples {
		refs[i] = sdta.Ref{Name: names.samples[i], Start: s.Start, End: s.End}
		if _, ok := owner[s.Start]; !ok {
			owner[s.Start] = i
		}
	}
	seq, err := sdta.Partition(b.Data, refs)
	if err != nil {
		return err
	}
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		if !seg.Hidden {
			continue
		}
		assigned, collided := names.sampleTable.Assign(seg.Name)
		if collided {
			log.Printf("hidden segment %q assigned file name %q to avoid collision", seg.Name, assigned)
		}
		seg.Name = assigned
	}

	if err := writeAudio(b, dir, seq, owner); err != nil {
		return err
	}
	if err := writeSamples(b, dir, names, seq, owner); err != nil {
		return err
	}
	if err := writeInstruments(b, dir, names); err != nil {
		return err
	}
	if err := writePresets(b, dir, names); err != nil {
		return err
	}
	return writeBank(b, dir, names, seq)
}

// nameset holds the assigned file-safe entity names, indexed by row.
type nameset struct {
	presets     []string
	instruments []string
	samples     []string
	sampleTable *fname.Table
}

// assignNames assigns file-safe names to every entity, logging collision
// repairs. The lead segment name is reserved up front so no sample can
// claim it.
func assignNames(b *sfbk.Bank) *nameset {
	names := &nameset{sampleTable: fname.NewTable()}
	names.sampleTable.Assign(sdta.LeadName)

	assign := func(table *fname.Table, kind, name string) string {
		assigned, collided := table.Assign(name)
		if collided {
			log.Printf("%s %q assigned file name %q to avoid collision", kind, name, assigned)
		}
		return assigned
	}
	presets := fname.NewTable()
	for _, p := range b.Presets {
		names.presets = append(names.presets, assign(presets, "preset", p.Name))
	}
	instruments := fname.NewTable()
	for _, inst := range b.Instruments {
		names.instruments = append(names.instruments, assign(instruments, "instrument", inst.Name))
	}
	for _, s := range b.Samples {
		names.samples = append(names.samples, assign(names.sampleTable, "sample", s.Name))
	}
	return names
}

// writeAudio writes one WAV file per segment with a bounded fan-out.
func writeAudio(b *sfbk.Bank, dir string, seq *sdta.Sequence, owner map[uint32]int) error {
	g := new(errgroup.Group)
	g.SetLimit(writeLimit)
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		if seg.Name == sdta.LeadName {
			continue
		}
		rate := uint32(hiddenRate)
		if row, ok := owner[seg.Start]; ok && !seg.Hidden {
			rate = b.Samples[row].Rate
		}
		smpl, sm24 := b.Data.Extract(seg)
		path := filepath.Join(dir, sampleDir, seg.Name+".wav")
		g.Go(func() error {
			return wave.Write(path, rate, smpl, sm24)
		})
	}
	return g.Wait()
}

// writeSamples writes one descriptor per sample row plus one per hidden
// segment.
func writeSamples(b *sfbk.Bank, dir string, names *nameset, seq *sdta.Sequence, owner map[uint32]int) error {
	segByStart := make(map[uint32]*sdta.Segment)
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		if !seg.Hidden && seg.Name != sdta.LeadName {
			segByStart[seg.Start] = seg
		}
	}
	for i, s := range b.Samples {
		d := desc.SampleFile{
			Name:        s.Name,
			Length:      s.End - s.Start,
			LoopStart:   int64(s.LoopStart) - int64(s.Start),
			LoopEnd:     int64(s.LoopEnd) - int64(s.Start),
			Rate:        s.Rate,
			OriginalKey: s.OriginalKey,
			Correction:  s.Correction,
			Channel:     desc.ChannelString(s.Type),
		}
		if (desc.IsLeft(s.Type) || desc.IsRight(s.Type)) && int(s.Link) < len(names.samples) {
			d.Link = names.samples[s.Link]
		} else {
			d.LinkIndex = s.Link
		}
		if row := owner[s.Start]; row == i {
			seg, ok := segByStart[s.Start]
			if !ok {
				// The declared start lies beyond the buffer; its segment was
				// clamped to the buffer end.
				return errors.Wrapf(sdta.ErrMalformedExtent, "sample %q start %d lies beyond the buffer", s.Name, s.Start)
			}
			d.Checksum = &desc.ChecksumDesc{Length: seg.Len(), Smpl: seg.SmplSum, Sm24: seg.Sm24Sum}
		} else {
			d.Segment = names.samples[row]
		}
		if err := desc.Dump(filepath.Join(dir, sampleDir, names.samples[i]+".yaml"), &d); err != nil {
			return err
		}
	}
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		if !seg.Hidden {
			continue
		}
		d := desc.SampleFile{
			Name:     seg.Name,
			Hidden:   true,
			Length:   seg.Len(),
			Rate:     hiddenRate,
			Checksum: &desc.ChecksumDesc{Length: seg.Len(), Smpl: seg.SmplSum, Sm24: seg.Sm24Sum},
		}
		if err := desc.Dump(filepath.Join(dir, sampleDir, seg.Name+".yaml"), &d); err != nil {
			return err
		}
	}
	return nil
}

func writeInstruments(b *sfbk.Bank, dir string, names *nameset) error {
	for i := range b.Instruments {
		inst := &b.Instruments[i]
		d := desc.InstrumentFile{Name: inst.Name}
		var err error
		if d.Global, d.Zones, err = zoneListDesc(&inst.ZoneList, sfbk.OperSampleID, names.samples); err != nil {
			return errors.Wrapf(err, "instrument %q", inst.Name)
		}
		if err := desc.Dump(filepath.Join(dir, instDir, names.instruments[i]+".yaml"), &d); err != nil {
			return err
		}
	}
	return nil
}

func writePresets(b *sfbk.Bank, dir string, names *nameset) error {
	for i := range b.Presets {
		p := &b.Presets[i]
		d := desc.PresetFile{
			Name:       p.Name,
			Preset:     p.PresetNum,
			Bank:       p.Bank,
			Library:    p.Library,
			Genre:      p.Genre,
			Morphology: p.Morphology,
		}
		var err error
		if d.Global, d.Zones, err = zoneListDesc(&p.ZoneList, sfbk.OperInstrument, names.instruments); err != nil {
			return errors.Wrapf(err, "preset %q", p.Name)
		}
		if err := desc.Dump(filepath.Join(dir, presetDir, names.presets[i]+".yaml"), &d); err != nil {
			return err
		}
	}
	return nil
}

func zoneListDesc(zl *sfbk.ZoneList, terminal sfbk.Oper, refNames []string) (*desc.ZoneDesc, []desc.ZoneDesc, error) {
	var global *desc.ZoneDesc
	if zl.Global != nil {
		zd, err := zoneDesc(zl.Global, terminal, refNames)
		if err != nil {
			return nil, nil, err
		}
		global = &zd
	}
	var zones []desc.ZoneDesc
	for i := range zl.Zones {
		zd, err := zoneDesc(&zl.Zones[i], terminal, refNames)
		if err != nil {
			return nil, nil, err
		}
		zones = append(zones, zd)
	}
	return global, zones, nil
}

func writeBank(b *sfbk.Bank, dir string, names *nameset, seq *sdta.Sequence) error {
	d := desc.BankFile{
		Presets:     names.presets,
		Instruments: names.instruments,
		Samples:     names.samples,
		Terminators: termDesc(&b.Terminators),
	}
	if f, ok := b.Info.Lookup("ifil"); ok {
		if v, ok := f.Version(); ok {
			d.Version = desc.VersionDesc{Major: v.Major, Minor: v.Minor}
		}
	}
	for _, f := range b.Info.Fields {
		d.Info = append(d.Info, infoDesc(f))
	}
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		d.Sequence = append(d.Sequence, desc.SeqEntry{Name: seg.Name})
		if seg.GapOverride != nil {
			gap := *seg.GapOverride
			d.Sequence = append(d.Sequence, desc.SeqEntry{Gap: &gap})
		}
	}
	return desc.Dump(filepath.Join(dir, bankFile), &d)
}
