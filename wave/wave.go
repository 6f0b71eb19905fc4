// Package wave reads and writes the per-segment audio files of a descriptor
// directory: one uncompressed mono PCM file per sample segment, 16-bit, or
// 24-bit when the bank carries a low-order sample extension stream.
package wave

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// ErrUnsupportedEncoding reports an audio file whose format, channel count,
// bit depth or sample rate does not match the declared segment metadata.
var ErrUnsupportedEncoding = errors.New("wave: unsupported encoding")

// wavFormat is the PCM format tag of uncompressed WAV files.
const wavFormat = 1

// Write writes one sample segment as a mono PCM WAV file. The smpl slice
// holds 16-bit little-endian sample words; a non-nil sm24 slice holds one
// low-order byte per word, widening the output to 24 bits.
func Write(path string, rate uint32, smpl, sm24 []byte) error {
	points := len(smpl) / 2
	bits := 16
	if sm24 != nil {
		bits = 24
	}
	data := make([]int, points)
	for i := 0; i < points; i++ {
		hi := int(int16(uint16(smpl[2*i]) | uint16(smpl[2*i+1])<<8))
		if sm24 != nil {
			lo := 0
			if i < len(sm24) {
				lo = int(sm24[i])
			}
			data[i] = hi<<8 | lo
		} else {
			data[i] = hi
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	enc := wav.NewEncoder(f, int(rate), bits, 1, wavFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: int(rate)},
		Data:           data,
		SourceBitDepth: bits,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %q", path)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "closing %q", path)
	}
	return errors.WithStack(f.Close())
}

// Read reads one sample segment from a mono PCM WAV file and splits it back
// into the 16-bit stream and, for 24-bit files, the low-order extension
// stream. The file's metadata is validated against the declared rate (0
// skips the check, for synthetic segments with no declared rate) and the
// expected bit depth.
func Read(path string, rate uint32, want24 bool) (smpl, sm24 []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, nil, errors.Wrapf(ErrUnsupportedEncoding, "%q is not a PCM WAV file", path)
	}
	if dec.WavAudioFormat != wavFormat {
		return nil, nil, errors.Wrapf(ErrUnsupportedEncoding, "%q: format tag %d; expected PCM", path, dec.WavAudioFormat)
	}
	if dec.NumChans != 1 {
		return nil, nil, errors.Wrapf(ErrUnsupportedEncoding, "%q: %d channels; expected mono", path, dec.NumChans)
	}
	wantBits := uint16(16)
	if want24 {
		wantBits = 24
	}
	if dec.BitDepth != wantBits {
		return nil, nil, errors.Wrapf(ErrUnsupportedEncoding, "%q: %d bits per sample; expected %d", path, dec.BitDepth, wantBits)
	}
	if rate != 0 && dec.SampleRate != rate {
		return nil, nil, errors.Wrapf(ErrUnsupportedEncoding, "%q: sample rate %d; declared %d", path, dec.SampleRate, rate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %q", path)
	}
	smpl = make([]byte, 2*len(buf.Data))
	if want24 {
		sm24 = make([]byte, len(buf.Data))
	}
	for i, v := range buf.Data {
		hi := v
		if want24 {
			hi = v >> 8
			sm24[i] = byte(v)
		}
		smpl[2*i] = byte(hi)
		smpl[2*i+1] = byte(hi >> 8)
	}
	return smpl, sm24, nil
}
