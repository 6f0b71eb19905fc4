package sdta

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

// dataWith returns a buffer of the given point count with the listed
// extents filled with non-zero words.
func dataWith(points uint32, filled ...[2]uint32) *Data {
	d := &Data{Smpl: make([]byte, 2*points)}
	for _, f := range filled {
		for i := f[0]; i < f[1]; i++ {
			d.Smpl[2*i] = 0x34
			d.Smpl[2*i+1] = 0x12
		}
	}
	return d
}

func u32(v uint32) *uint32 { return &v }

func TestPartitionDefaultGaps(t *testing.T) {
	// Three samples of 100 points separated by the default 32 zero points,
	// with a default trailing gap.
	d := dataWith(396, [2]uint32{0, 100}, [2]uint32{132, 232}, [2]uint32{264, 364})
	refs := []Ref{
		{Name: "a", Start: 0, End: 100},
		{Name: "b", Start: 132, End: 232},
		{Name: "c", Start: 264, End: 364},
	}
	seq, err := Partition(d, refs)
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	if len(seq.Segments) != 3 {
		t.Fatalf("segment count mismatch; got %d, want 3", len(seq.Segments))
	}
	for i, seg := range seq.Segments {
		if seg.GapOverride != nil {
			t.Fatalf("segment %d: unexpected gap override %d", i, *seg.GapOverride)
		}
	}
}

func TestPartitionGapOverride(t *testing.T) {
	// The second gap is 64 points wide; the override becomes the active
	// default, so the matching 64 point trailing gap needs none.
	d := dataWith(528, [2]uint32{0, 100}, [2]uint32{132, 232}, [2]uint32{296, 396}, [2]uint32{460, 464})
	refs := []Ref{
		{Name: "a", Start: 0, End: 100},
		{Name: "b", Start: 132, End: 232},
		{Name: "c", Start: 296, End: 396},
		{Name: "d", Start: 460, End: 464},
	}
	seq, err := Partition(d, refs)
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	if len(seq.Segments) != 4 {
		t.Fatalf("segment count mismatch; got %d, want 4", len(seq.Segments))
	}
	if o := seq.Segments[0].GapOverride; o != nil {
		t.Fatalf("segment 0: unexpected gap override %d", *o)
	}
	if o := seq.Segments[1].GapOverride; o == nil || *o != 64 {
		t.Fatalf("segment 1: gap override mismatch; got %v, want 64", o)
	}
	if o := seq.Segments[2].GapOverride; o != nil {
		t.Fatalf("segment 2: unexpected gap override %d", *o)
	}
}

func TestPartitionHiddenSegment(t *testing.T) {
	// One non-zero point hides inside the gap; it is promoted to a named
	// hidden segment and the silent margins stay gaps.
	d := dataWith(253, [2]uint32{0, 100}, [2]uint32{110, 111}, [2]uint32{132, 232})
	refs := []Ref{
		{Name: "a", Start: 0, End: 100},
		{Name: "b", Start: 132, End: 232},
	}
	seq, err := Partition(d, refs)
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	if len(seq.Segments) != 3 {
		t.Fatalf("segment count mismatch; got %d, want 3", len(seq.Segments))
	}
	h := seq.Segments[1]
	if !h.Hidden {
		t.Fatalf("expected hidden segment, got %+v", h)
	}
	if h.Start != 110 || h.End != 111 {
		t.Fatalf("hidden extent mismatch; got [%d, %d), want [110, 111)", h.Start, h.End)
	}
	if h.Name != HiddenName(110) {
		t.Fatalf("hidden name mismatch; got %q, want %q", h.Name, HiddenName(110))
	}
	// The surrounding gaps are 10 and 21 points; both differ from the
	// running default, so both boundary segments carry overrides.
	if o := seq.Segments[0].GapOverride; o == nil || *o != 10 {
		t.Fatalf("segment 0: gap override mismatch; got %v, want 10", o)
	}
	if o := h.GapOverride; o == nil || *o != 21 {
		t.Fatalf("hidden segment: gap override mismatch; got %v, want 21", o)
	}
	if o := seq.Segments[2].GapOverride; o != nil {
		t.Fatalf("segment 2: unexpected gap override %d", *o)
	}
}

func TestPartitionAliasAndClamp(t *testing.T) {
	d := dataWith(164, [2]uint32{0, 110}, [2]uint32{132, 136})
	refs := []Ref{
		{Name: "a", Start: 0, End: 110}, // overlaps into b's region
		{Name: "alias", Start: 0, End: 0},
		{Name: "b", Start: 100, End: 136},
	}
	seq, err := Partition(d, refs)
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	// The alias is dropped; a is clamped to b's start.
	if len(seq.Segments) != 2 {
		t.Fatalf("segment count mismatch; got %d, want 2", len(seq.Segments))
	}
	if seq.Segments[0].Name != "a" || seq.Segments[0].End != 100 {
		t.Fatalf("clamp mismatch; got %q end %d, want a end 100", seq.Segments[0].Name, seq.Segments[0].End)
	}
}

func TestPartitionMalformedExtent(t *testing.T) {
	d := dataWith(100)
	// An inverted extent is rejected rather than sliced.
	if _, err := Partition(d, []Ref{{Name: "a", Start: 50, End: 10}}); !errors.Is(err, ErrMalformedExtent) {
		t.Fatalf("error mismatch; got %v, want ErrMalformedExtent", err)
	}
	// An extent beyond the buffer is clamped to its end.
	seq, err := Partition(d, []Ref{{Name: "a", Start: 500, End: 600}})
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	n := len(seq.Segments)
	last := seq.Segments[n-1]
	if last.Name != "a" || last.Start != 100 || last.Len() != 0 {
		t.Fatalf("clamped segment mismatch; got %+v", last)
	}
	// A 24-bit stream shorter than the 16-bit stream is rejected.
	d.Sm24 = make([]byte, 50)
	if _, err := Partition(d, []Ref{{Name: "a", Start: 0, End: 10}}); !errors.Is(err, ErrMalformedExtent) {
		t.Fatalf("error mismatch; got %v, want ErrMalformedExtent", err)
	}
}

func TestPartitionLeadSegment(t *testing.T) {
	// The first sample starts at 40; a zero-length lead segment opens the
	// sequence so the leading region is expressible as its gap.
	d := dataWith(172, [2]uint32{40, 140})
	seq, err := Partition(d, []Ref{{Name: "a", Start: 40, End: 140}})
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}
	if len(seq.Segments) != 2 {
		t.Fatalf("segment count mismatch; got %d, want 2", len(seq.Segments))
	}
	lead := seq.Segments[0]
	if lead.Name != LeadName || lead.Len() != 0 {
		t.Fatalf("lead segment mismatch; got %+v", lead)
	}
	if o := lead.GapOverride; o == nil || *o != 40 {
		t.Fatalf("lead gap override mismatch; got %v, want 40", o)
	}
}

func TestRebuildRoundTrip(t *testing.T) {
	d := dataWith(528, [2]uint32{0, 100}, [2]uint32{132, 232}, [2]uint32{296, 396}, [2]uint32{460, 464})
	refs := []Ref{
		{Name: "a", Start: 0, End: 100},
		{Name: "b", Start: 132, End: 232},
		{Name: "c", Start: 296, End: 396},
		{Name: "d", Start: 460, End: 464},
	}
	seq, err := Partition(d, refs)
	if err != nil {
		t.Fatalf("error partitioning buffer; %v", err)
	}

	var items []Item
	for i := range seq.Segments {
		seg := &seq.Segments[i]
		smpl, sm24 := d.Extract(seg)
		items = append(items, Item{Name: seg.Name, Smpl: smpl, Sm24: sm24, SmplSum: seg.SmplSum, Sm24Sum: seg.Sm24Sum})
		if seg.GapOverride != nil {
			items = append(items, Item{Override: seg.GapOverride})
		}
	}
	got, offsets, err := Rebuild(items, false)
	if err != nil {
		t.Fatalf("error rebuilding buffer; %v", err)
	}
	if !bytes.Equal(got.Smpl, d.Smpl) {
		t.Fatalf("rebuilt buffer mismatch; got %d bytes, want %d", len(got.Smpl), len(d.Smpl))
	}
	for _, ref := range refs {
		if offsets[ref.Name] != ref.Start {
			t.Fatalf("offset mismatch for %q; got %d, want %d", ref.Name, offsets[ref.Name], ref.Start)
		}
	}
}

func TestRebuildChecksumMismatch(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	items := []Item{{Name: "a", Smpl: payload, SmplSum: Digest([]byte{9, 9, 9, 9})}}
	if _, _, err := Rebuild(items, false); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error mismatch; got %v, want ErrChecksumMismatch", err)
	}
}

func TestRebuildGapSequencing(t *testing.T) {
	sample := Item{Name: "a", Smpl: []byte{1, 2}, SmplSum: Digest([]byte{1, 2})}
	golden := []struct {
		name  string
		items []Item
	}{
		{name: "override before any sample", items: []Item{{Override: u32(16)}, sample}},
		{name: "two consecutive overrides", items: []Item{sample, {Override: u32(16)}, {Override: u32(8)}}},
	}
	for _, g := range golden {
		if _, _, err := Rebuild(g.items, false); !errors.Is(err, ErrGapSequencing) {
			t.Fatalf("%s: error mismatch; got %v, want ErrGapSequencing", g.name, err)
		}
	}
}

func TestRebuild24Bit(t *testing.T) {
	smpl := []byte{0x01, 0x02, 0x03, 0x04}
	sm24 := []byte{0xaa, 0xbb}
	items := []Item{{Name: "a", Smpl: smpl, Sm24: sm24, SmplSum: Digest(smpl), Sm24Sum: Digest(sm24)}}
	d, _, err := Rebuild(items, true)
	if err != nil {
		t.Fatalf("error rebuilding buffer; %v", err)
	}
	wantSmpl := append(append([]byte{}, smpl...), make([]byte, 2*DefaultGap)...)
	wantSm24 := append(append([]byte{}, sm24...), make([]byte, DefaultGap)...)
	if !bytes.Equal(d.Smpl, wantSmpl) || !bytes.Equal(d.Sm24, wantSm24) {
		t.Fatalf("rebuilt streams mismatch; smpl %d bytes, sm24 %d bytes", len(d.Smpl), len(d.Sm24))
	}

	// A truncated low-order stream is rejected.
	items[0].Sm24 = sm24[:1]
	if _, _, err := Rebuild(items, true); err == nil {
		t.Fatal("expected error for truncated sm24 stream, got none")
	}
}
