package convert_test

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mewkiz/sfbk"
	"github.com/mewkiz/sfbk/convert"
	"github.com/mewkiz/sfbk/pdta"
	"github.com/mewkiz/sfbk/sdta"
)

func gen(op sfbk.Oper, v int16) sfbk.Generator {
	return sfbk.Generator{Oper: op, Amount: pdta.AmountFromInt16(v)}
}

func genRange(op sfbk.Oper, lo, hi uint8) sfbk.Generator {
	return sfbk.Generator{Oper: op, Amount: pdta.AmountFromRange(lo, hi)}
}

func genRef(op sfbk.Oper, idx uint16) sfbk.Generator {
	return sfbk.Generator{Oper: op, Amount: pdta.Amount(idx)}
}

// testBank builds a two sample stereo bank with a global instrument zone.
// The buffer holds two 100 point samples separated by the default 32 point
// gap, with a trailing default gap.
func testBank() *sfbk.Bank {
	data := &sdta.Data{Smpl: make([]byte, 2*264)}
	fill := func(start, end uint32) {
		for i := start; i < end; i++ {
			data.Smpl[2*i] = byte(i)
			data.Smpl[2*i+1] = 0x40
		}
	}
	fill(0, 100)
	fill(132, 232)

	b := &sfbk.Bank{Data: data}
	b.Info.Fields = []sfbk.InfoField{
		{ID: "ifil", Raw: []byte{2, 0, 1, 0}},
		{ID: "isng", Raw: []byte("EMU8000\x00")},
		{ID: "INAM", Raw: []byte("Test bank\x00")},
	}
	b.Samples = []sfbk.Sample{
		{
			Name: "piano L", Start: 0, End: 100,
			LoopStart: 10, LoopEnd: 90,
			Rate: 44100, OriginalKey: 60,
			Link: 1, Type: sfbk.SampleTypeLeft,
		},
		{
			Name: "piano R", Start: 132, End: 232,
			LoopStart: 142, LoopEnd: 222,
			Rate: 44100, OriginalKey: 60,
			Link: 0, Type: sfbk.SampleTypeRight,
		},
	}
	b.Instruments = []sfbk.Instrument{{
		Name: "piano",
		ZoneList: sfbk.ZoneList{
			Global: &sfbk.Zone{
				Gens: []sfbk.Generator{gen(17, -250)},
				Mods: []sfbk.Modulator{{SrcOper: 0x0502, DestOper: 48, Amount: 960, AmtSrcOper: 0, TransOper: 0}},
			},
			Zones: []sfbk.Zone{
				{Gens: []sfbk.Generator{genRange(sfbk.OperKeyRange, 0, 127), genRef(sfbk.OperSampleID, 0)}},
				{Gens: []sfbk.Generator{genRange(sfbk.OperKeyRange, 0, 127), genRef(sfbk.OperSampleID, 1)}},
			},
		},
	}}
	b.Presets = []sfbk.Preset{{
		Name: "Grand Piano", PresetNum: 0, Bank: 0,
		ZoneList: sfbk.ZoneList{
			Zones: []sfbk.Zone{
				{Gens: []sfbk.Generator{genRef(sfbk.OperInstrument, 0)}},
			},
		},
	}}
	b.Terminators = sfbk.Terminators{
		Preset:     sfbk.PresetTerminator{Name: "EOP"},
		Instrument: sfbk.InstTerminator{Name: "EOI"},
		Sample:     sfbk.Sample{Name: "EOS"},
	}
	return b
}

func TestExportImportRoundTrip(t *testing.T) {
	want := testBank()
	dir := t.TempDir()
	if err := convert.Export(want, dir); err != nil {
		t.Fatalf("error exporting bank; %+v", err)
	}
	got, err := convert.Import(dir)
	if err != nil {
		t.Fatalf("error importing bank; %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("bank model mismatch after text round trip;\ngot  %#v\nwant %#v", got, want)
	}

	wantBuf, err := want.Encode()
	if err != nil {
		t.Fatalf("error encoding original bank; %+v", err)
	}
	gotBuf, err := got.Encode()
	if err != nil {
		t.Fatalf("error encoding imported bank; %+v", err)
	}
	if !bytes.Equal(gotBuf, wantBuf) {
		t.Fatalf("binary mismatch after text round trip; got %d bytes, want %d bytes", len(gotBuf), len(wantBuf))
	}
}

func TestExportIdempotence(t *testing.T) {
	b := testBank()
	dir1, dir2 := t.TempDir(), t.TempDir()
	if err := convert.Export(b, dir1); err != nil {
		t.Fatalf("error exporting bank; %+v", err)
	}
	again, err := convert.Import(dir1)
	if err != nil {
		t.Fatalf("error importing bank; %+v", err)
	}
	if err := convert.Export(again, dir2); err != nil {
		t.Fatalf("error re-exporting bank; %+v", err)
	}
	for _, name := range []string{"bank.yaml", filepath.Join("sample", "piano_L.yaml"), filepath.Join("instrument", "piano.yaml")} {
		buf1, err := os.ReadFile(filepath.Join(dir1, name))
		if err != nil {
			t.Fatalf("error reading %v; %v", name, err)
		}
		buf2, err := os.ReadFile(filepath.Join(dir2, name))
		if err != nil {
			t.Fatalf("error reading %v; %v", name, err)
		}
		if !bytes.Equal(buf1, buf2) {
			t.Fatalf("descriptor %v differs between conversions;\nfirst:\n%s\nsecond:\n%s", name, buf1, buf2)
		}
	}
}

func TestLinksConsistent(t *testing.T) {
	b := testBank()
	if !convert.LinksConsistent(b) {
		t.Fatal("expected consistent link metadata")
	}
	// Break the back link.
	b.Samples[1].Link = 1
	if convert.LinksConsistent(b) {
		t.Fatal("expected inconsistent link metadata")
	}
	zones := convert.PairZones(b)
	if len(zones) != 2 {
		t.Fatalf("pair zone count mismatch; got %d, want 2", len(zones))
	}
	pairs, warnings := sdta.Pair(zones)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if pairs[0] != 1 || pairs[1] != 0 {
		t.Fatalf("derived pairing mismatch; got %v", pairs)
	}
}
