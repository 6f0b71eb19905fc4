package pdta_test

import (
	"bytes"
	"testing"

	"github.com/icza/mighty"
	"github.com/mewkiz/sfbk/pdta"
	"github.com/pkg/errors"
)

func TestRowWidths(t *testing.T) {
	eq := mighty.Eq(t)
	golden := map[string]int{
		"phdr": 38, "pbag": 4, "pmod": 10, "pgen": 4,
		"inst": 22, "ibag": 4, "imod": 10, "igen": 4,
		"shdr": 46,
	}
	eq(len(golden), len(pdta.Layouts))
	for _, l := range pdta.Layouts {
		eq(golden[l.Name], l.RowWidth)
	}
}

func TestSampleHeaderRoundTrip(t *testing.T) {
	payload := []byte{
		'K', 'i', 'c', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // name
		0x10, 0x00, 0x00, 0x00, // start
		0x90, 0x01, 0x00, 0x00, // end
		0x14, 0x00, 0x00, 0x00, // loopStart
		0x8c, 0x01, 0x00, 0x00, // loopEnd
		0x44, 0xac, 0x00, 0x00, // rate = 44100
		60,   // originalKey
		0xfb, // correction = -5
		0x02, 0x00, // link
		0x04, 0x00, // type = left
	}
	rows, err := pdta.SampleHeader.Decode(payload)
	if err != nil {
		t.Fatalf("error decoding shdr payload; %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count mismatch; got %d, want 1", len(rows))
	}
	r := rows[0]
	eq := mighty.Eq(t)
	eq(0, r.Index)
	eq("Kick", r.Text(pdta.FieldName))
	eq(uint64(0x10), r.Uint(pdta.FieldStart))
	eq(uint64(0x190), r.Uint(pdta.FieldEnd))
	eq(uint64(44100), r.Uint(pdta.FieldRate))
	eq(int64(-5), r.Int(pdta.FieldCorrection))
	eq(uint64(4), r.Uint(pdta.FieldType))

	got, err := pdta.SampleHeader.Encode(rows)
	if err != nil {
		t.Fatalf("error encoding shdr rows; %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch;\ngot  % 02x\nwant % 02x", got, payload)
	}
}

func TestGeneratorAmount(t *testing.T) {
	eq := mighty.Eq(t)
	// keyRange 36-96 followed by a negative value generator.
	payload := []byte{
		43, 0x00, 36, 96, // oper=keyRange, amount=36-96
		8, 0x00, 0x18, 0xfc, // oper=initialFilterFc, amount=-1000
	}
	rows, err := pdta.PresetGen.Decode(payload)
	if err != nil {
		t.Fatalf("error decoding pgen payload; %v", err)
	}
	lo, hi := rows[0].Amount(pdta.FieldAmount).Range()
	eq(uint8(36), lo)
	eq(uint8(96), hi)
	eq("36-96", rows[0].Amount(pdta.FieldAmount).String())
	eq(int16(-1000), rows[1].Amount(pdta.FieldAmount).Int16())

	// All three interpretations decode the same cell.
	a := pdta.AmountFromRange(0xe8, 0x03)
	eq(uint16(0x03e8), a.Uint16())
	eq(int16(1000), a.Int16())

	got, err := pdta.PresetGen.Encode(rows)
	if err != nil {
		t.Fatalf("error encoding pgen rows; %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch; got % 02x, want % 02x", got, payload)
	}
}

func TestDecodeMalformed(t *testing.T) {
	golden := []struct {
		name    string
		payload []byte
	}{
		{name: "empty payload", payload: nil},
		{name: "misaligned payload", payload: make([]byte, 7)},
	}
	for _, g := range golden {
		if _, err := pdta.PresetBag.Decode(g.payload); !errors.Is(err, pdta.ErrMalformedTable) {
			t.Fatalf("%s: error mismatch; got %v, want ErrMalformedTable", g.name, err)
		}
	}
}

func TestTextField(t *testing.T) {
	// Bytes after the first NUL are insignificant; the name is cut there.
	payload := make([]byte, 22)
	copy(payload, "Piano\x00garbage")
	rows, err := pdta.InstHeader.Decode(payload)
	if err != nil {
		t.Fatalf("error decoding inst payload; %v", err)
	}
	if got, want := rows[0].Text(pdta.FieldName), "Piano"; got != want {
		t.Fatalf("name mismatch; got %q, want %q", got, want)
	}

	// Encoding pads with zero bytes up to the fixed width.
	row := pdta.InstHeader.NewRow()
	row.SetText(pdta.FieldName, "Piano")
	row.SetUint(pdta.FieldBagIndex, 7)
	got, err := pdta.InstHeader.Encode([]pdta.Row{row})
	if err != nil {
		t.Fatalf("error encoding inst row; %v", err)
	}
	want := make([]byte, 22)
	copy(want, "Piano")
	want[20] = 7
	if !bytes.Equal(got, want) {
		t.Fatalf("encode mismatch;\ngot  % 02x\nwant % 02x", got, want)
	}

	// A name longer than the field is rejected.
	row.SetText(pdta.FieldName, "a name which is far too long to fit")
	if _, err := pdta.InstHeader.Encode([]pdta.Row{row}); !errors.Is(err, pdta.ErrMalformedTable) {
		t.Fatalf("error mismatch; got %v, want ErrMalformedTable", err)
	}
}

func TestEncodeOverflow(t *testing.T) {
	// A value wider than its declared field is rejected rather than
	// truncated to wrapped low bytes.
	row := pdta.PresetBag.NewRow()
	row.SetUint(pdta.FieldGenIndex, 70000)
	if _, err := pdta.PresetBag.Encode([]pdta.Row{row}); !errors.Is(err, pdta.ErrMalformedTable) {
		t.Fatalf("error mismatch; got %v, want ErrMalformedTable", err)
	}

	// The maximal in-width value still encodes.
	row.SetUint(pdta.FieldGenIndex, 0xffff)
	got, err := pdta.PresetBag.Encode([]pdta.Row{row})
	if err != nil {
		t.Fatalf("error encoding pbag row; %v", err)
	}
	if !bytes.Equal(got, []byte{0xff, 0xff, 0, 0}) {
		t.Fatalf("payload mismatch; got % 02x, want ff ff 00 00", got)
	}
}
