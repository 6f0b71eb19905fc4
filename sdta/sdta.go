// Package sdta manages the shared PCM buffer of a sound-bank file: the
// partition of one contiguous sample buffer into named, checksummed
// segments, and its byte-exact reassembly from those segments.
//
// Partitioning is gap aware. Declared samples are separated by runs of zero
// points whose default width is DefaultGap; a segment whose following gap
// differs from the active default carries an explicit override which
// becomes the new default. Non-silent filler found between declared samples
// is promoted to a named hidden segment so no content is lost.
package sdta

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrChecksumMismatch reports segment audio content which does not match
	// its recorded digest.
	ErrChecksumMismatch = errors.New("sdta: checksum mismatch")
	// ErrGapSequencing reports a gap override declared before any sample or
	// two consecutive overrides with no sample between them.
	ErrGapSequencing = errors.New("sdta: gap override out of sequence")
	// ErrMalformedExtent reports a declared sample extent which ends before
	// it starts, or a 24-bit stream too short to cover the 16-bit stream.
	ErrMalformedExtent = errors.New("sdta: malformed sample extent")
)

// DefaultGap is the default number of zero sample points separating
// adjacent declared samples.
const DefaultGap = 32

// Data is the shared PCM buffer of one bank.
type Data struct {
	// 16-bit little-endian sample words; the high-order stream.
	Smpl []byte
	// Optional low-order byte per sample word, extending samples to 24
	// bits.
	Sm24 []byte
}

// Points returns the number of sample points in the buffer.
func (d *Data) Points() uint32 {
	return uint32(len(d.Smpl) / 2)
}

// Has24 reports whether the buffer carries a 24-bit low-order stream.
func (d *Data) Has24() bool {
	return len(d.Sm24) > 0
}

// silent reports whether the sample point at i is zero across both streams.
func (d *Data) silent(i uint32) bool {
	if d.Smpl[2*i] != 0 || d.Smpl[2*i+1] != 0 {
		return false
	}
	if d.Has24() && uint32(len(d.Sm24)) > i && d.Sm24[i] != 0 {
		return false
	}
	return true
}

// A Ref names one declared sample extent within the buffer, in absolute
// sample points.
type Ref struct {
	Name  string
	Start uint32
	End   uint32
}

// A Segment is one named sub-range of the partitioned buffer.
type Segment struct {
	Name  string
	Start uint32
	End   uint32
	// Hidden marks non-silent filler discovered between declared samples.
	Hidden bool
	// GapOverride, when non-nil, is the zero-point width of the gap
	// following this segment; it becomes the active default for subsequent
	// gaps.
	GapOverride *uint32
	// Hex MD5 digest of the segment's 16-bit stream.
	SmplSum string
	// Hex MD5 digest of the segment's 24-bit low-order stream, if present.
	Sm24Sum string
}

// Len returns the segment length in sample points.
func (s *Segment) Len() uint32 {
	return s.End - s.Start
}

// A Sequence is an ordered, gap-aware partition of the whole buffer. The
// union of its segments and their gaps covers the buffer exactly.
type Sequence struct {
	Segments []Segment
}

// Partition partitions the buffer into one segment per distinct declared
// start offset plus any discovered hidden segments. Aliased headers (those
// sharing a start offset) keep their first occurrence; overlapping extents
// are clamped to the next segment's start.
func Partition(data *Data, refs []Ref) (*Sequence, error) {
	total := data.Points()
	if data.Has24() && uint32(len(data.Sm24)) < total {
		return nil, errors.Wrapf(ErrMalformedExtent, "sm24 stream holds %d points, smpl stream %d", len(data.Sm24), total)
	}

	// One segment per distinct start offset, first occurrence wins. Extents
	// beyond the buffer are clamped; an inverted extent is rejected.
	seen := make(map[uint32]bool, len(refs))
	var segs []Segment
	for _, ref := range refs {
		if ref.End < ref.Start {
			return nil, errors.Wrapf(ErrMalformedExtent, "sample %q extent [%d, %d)", ref.Name, ref.Start, ref.End)
		}
		start, end := ref.Start, ref.End
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		if seen[start] {
			continue
		}
		seen[start] = true
		segs = append(segs, Segment{Name: ref.Name, Start: start, End: end})
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	// Synthetic zero-length lead segment when the buffer does not open on a
	// declared sample; the region before the first sample is then an
	// ordinary gap.
	if len(segs) == 0 || segs[0].Start != 0 {
		segs = append([]Segment{{Name: LeadName}}, segs...)
	}

	// Clamp overlapping extents.
	for i := 0; i+1 < len(segs); i++ {
		if segs[i].End > segs[i+1].Start {
			segs[i].End = segs[i+1].Start
		}
	}
	if n := len(segs); segs[n-1].End > total {
		segs[n-1].End = total
	}

	// Scan every gap, the trailing region included, promoting non-silent
	// filler to hidden segments. The hidden segment covers exactly the
	// maximal non-trivial sub-range; silent margins stay gaps.
	out := segs[:0:0]
	for i, seg := range segs {
		out = append(out, seg)
		gapEnd := total
		if i+1 < len(segs) {
			gapEnd = segs[i+1].Start
		}
		if hidden, ok := scanGap(data, seg.End, gapEnd); ok {
			out = append(out, hidden)
		}
	}

	// Derive gap overrides from the final segment order.
	active := uint32(DefaultGap)
	for i := range out {
		gapEnd := total
		if i+1 < len(out) {
			gapEnd = out[i+1].Start
		}
		gap := gapEnd - out[i].End
		if gap != active {
			gap := gap
			out[i].GapOverride = &gap
			active = gap
		}
	}

	// Content digests, one per stream.
	for i := range out {
		seg := &out[i]
		seg.SmplSum = Digest(data.Smpl[2*seg.Start : 2*seg.End])
		if data.Has24() {
			seg.Sm24Sum = Digest(data.Sm24[seg.Start:seg.End])
		}
	}
	return &Sequence{Segments: out}, nil
}

// LeadName is the name of the synthetic zero-length segment opening a
// buffer whose first declared sample does not start at offset zero.
const LeadName = "_lead"

// HiddenName returns the derived name of a hidden segment found at the
// given buffer offset.
func HiddenName(start uint32) string {
	return fmt.Sprintf("_hidden_%d", start)
}

// scanGap scans the buffer region [start, end) and returns a hidden segment
// covering its maximal non-silent sub-range, if any.
func scanGap(data *Data, start, end uint32) (Segment, bool) {
	first, last := end, end
	for i := start; i < end; i++ {
		if !data.silent(i) {
			if first == end {
				first = i
			}
			last = i
		}
	}
	if first == end {
		return Segment{}, false
	}
	return Segment{
		Name:   HiddenName(first),
		Start:  first,
		End:    last + 1,
		Hidden: true,
	}, true
}

// Extract returns the two stream payloads of the segment. A segment
// reaching beyond the 24-bit stream yields no sm24 payload.
func (d *Data) Extract(seg *Segment) (smpl, sm24 []byte) {
	smpl = d.Smpl[2*seg.Start : 2*seg.End]
	if d.Has24() && uint32(len(d.Sm24)) >= seg.End {
		sm24 = d.Sm24[seg.Start:seg.End]
	}
	return smpl, sm24
}

// An Item is one entry of the ordered segment sequence driving reassembly:
// either a named segment with its payload and recorded digests, or a gap
// override marker.
type Item struct {
	// Override marker; when non-nil all other fields are ignored.
	Override *uint32

	Name string
	// Raw stream payloads sourced from the segment's audio file.
	Smpl []byte
	Sm24 []byte
	// Recorded hex digests; verified against the payload before it is
	// appended.
	SmplSum string
	Sm24Sum string
}

// Rebuild reconstructs the contiguous PCM buffer from an ordered item
// sequence, appending each segment's payload followed by a zero-filled gap
// of the active width. It returns the rebuilt buffer and the absolute start
// offset assigned to each named segment.
func Rebuild(items []Item, has24 bool) (*Data, map[string]uint32, error) {
	data := &Data{}
	offsets := make(map[string]uint32)
	active := uint32(DefaultGap)
	sampleSeen := false
	overridePending := false
	for _, item := range items {
		if item.Override != nil {
			if !sampleSeen {
				return nil, nil, errors.Wrap(ErrGapSequencing, "override before any sample")
			}
			if overridePending {
				return nil, nil, errors.Wrap(ErrGapSequencing, "two consecutive overrides")
			}
			active = *item.Override
			overridePending = true
			continue
		}
		if len(item.Smpl)%2 != 0 {
			return nil, nil, errors.Errorf("sdta: segment %q has odd 16-bit payload length %d", item.Name, len(item.Smpl))
		}
		if err := verify(&item, has24); err != nil {
			return nil, nil, err
		}
		if sampleSeen {
			data.appendGap(active, has24)
		}
		offsets[item.Name] = uint32(len(data.Smpl) / 2)
		data.Smpl = append(data.Smpl, item.Smpl...)
		if has24 {
			data.Sm24 = append(data.Sm24, item.Sm24...)
		}
		sampleSeen = true
		overridePending = false
	}
	if sampleSeen {
		// Trailing gap after the last segment.
		data.appendGap(active, has24)
	}
	return data, offsets, nil
}

// verify checks the recorded digests of one segment payload.
func verify(item *Item, has24 bool) error {
	if got := Digest(item.Smpl); !strings.EqualFold(got, item.SmplSum) {
		return errors.Wrapf(ErrChecksumMismatch, "segment %q 16-bit stream; got %s, want %s", item.Name, got, item.SmplSum)
	}
	if !has24 {
		return nil
	}
	if len(item.Sm24) != len(item.Smpl)/2 {
		return errors.Errorf("sdta: segment %q 24-bit stream length %d does not cover %d points", item.Name, len(item.Sm24), len(item.Smpl)/2)
	}
	if got := Digest(item.Sm24); !strings.EqualFold(got, item.Sm24Sum) {
		return errors.Wrapf(ErrChecksumMismatch, "segment %q 24-bit stream; got %s, want %s", item.Name, got, item.Sm24Sum)
	}
	return nil
}

func (d *Data) appendGap(points uint32, has24 bool) {
	d.Smpl = append(d.Smpl, make([]byte, 2*points)...)
	if has24 {
		d.Sm24 = append(d.Sm24, make([]byte, points)...)
	}
}

// digest returns the hex MD5 digest of one stream payload.
func Digest(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
