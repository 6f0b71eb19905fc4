package desc

import (
	"fmt"
	"strconv"
	"strings"
)

// A SampleFile is one sample descriptor. Offsets are relative to the
// sample's own start position; the absolute position is assigned by the
// sequence during reassembly.
type SampleFile struct {
	Name string `yaml:"name"`
	// Hidden marks non-silent filler discovered between declared samples;
	// hidden descriptors carry audio and checksums only.
	Hidden bool `yaml:"hidden,omitempty"`
	// Segment supplying this sample's start offset, when the sample aliases
	// another sample's region instead of owning its own audio file.
	Segment string `yaml:"segment,omitempty"`
	// Declared sample length in points. May exceed the owning segment for
	// overlapping headers; the stored end offset is start + length.
	Length uint32 `yaml:"length"`
	// Loop points relative to the sample start.
	LoopStart int64 `yaml:"loop-start"`
	LoopEnd   int64 `yaml:"loop-end"`
	// Sample rate in Hz.
	Rate uint32 `yaml:"rate"`
	// Original MIDI key and cent correction.
	OriginalKey uint8 `yaml:"original-key"`
	Correction  int8  `yaml:"correction,omitempty"`
	// Stereo-linked partner sample, by name when the channel tag declares a
	// pairing; LinkIndex preserves the raw row index otherwise.
	Link      string `yaml:"link,omitempty"`
	LinkIndex uint16 `yaml:"link-index,omitempty"`
	// Channel tag; see ChannelString.
	Channel string `yaml:"channel,omitempty"`
	// Content checksums of the owning segment; absent for samples aliasing
	// another segment.
	Checksum *ChecksumDesc `yaml:"checksum,omitempty"`
}

// A ChecksumDesc records a segment's payload length in points and the hex
// digest of each stream.
type ChecksumDesc struct {
	Length uint32 `yaml:"length"`
	Smpl   string `yaml:"smpl"`
	Sm24   string `yaml:"sm24,omitempty"`
}

// Channel type tags of the sample header type field.
const (
	channelMono  = 0x0001
	channelRight = 0x0002
	channelLeft  = 0x0004
	channelROM   = 0x8000
)

// ChannelString returns the textual channel tag of a sample header type
// value. Unrecognized values render as "type-<n>" and round-trip verbatim.
func ChannelString(typ uint16) string {
	name := ""
	switch typ &^ channelROM {
	case channelMono:
		name = "mono"
	case channelRight:
		name = "right"
	case channelLeft:
		name = "left"
	default:
		return fmt.Sprintf("type-%d", typ)
	}
	if typ&channelROM != 0 {
		return "rom-" + name
	}
	return name
}

// ChannelType returns the sample header type value of a textual channel
// tag.
func ChannelType(s string) (uint16, bool) {
	var typ uint16
	if rest, ok := strings.CutPrefix(s, "rom-"); ok {
		typ = channelROM
		s = rest
	}
	switch s {
	case "mono":
		return typ | channelMono, true
	case "right":
		return typ | channelRight, true
	case "left":
		return typ | channelLeft, true
	}
	if raw, ok := strings.CutPrefix(s, "type-"); ok && typ == 0 {
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return 0, false
		}
		return uint16(n), true
	}
	return 0, false
}

// IsLeft reports whether the channel tag names a left channel sample.
func IsLeft(typ uint16) bool { return typ&channelLeft != 0 }

// IsRight reports whether the channel tag names a right channel sample.
func IsRight(typ uint16) bool { return typ&channelRight != 0 }
