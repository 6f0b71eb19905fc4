// Package riff provides access to RIFF container chunks, the nested binary
// framing used by sound-bank files.
//
// The basic structure of a RIFF stream is:
//   - A four byte ASCII chunk identifier.
//   - A four byte little-endian payload length.
//   - The payload, followed by one zero pad byte if its length is odd.
//
// Chunks with the identifiers "RIFF" and "LIST" are container nodes; their
// payload starts with a four byte type tag followed by nested child chunks.
// All other chunks are leaves holding raw bytes.
package riff

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedContainer reports a truncated chunk header or a declared chunk
// length which overruns its enclosing buffer.
var ErrMalformedContainer = errors.New("riff: malformed container")

// Chunk identifiers of container nodes.
const (
	IDRIFF = "RIFF"
	IDLIST = "LIST"
)

// headerSize is the size in bytes of a chunk identifier and length field.
const headerSize = 8

// A Chunk is a single self-describing block of a RIFF stream, either a leaf
// carrying raw bytes or a container node carrying child chunks.
type Chunk struct {
	// Four character chunk identifier.
	ID string
	// Four character type tag; container nodes only.
	Type string
	// Leaf payload; nil for container nodes.
	Body []byte
	// Child chunks; nil for leaves.
	Children []*Chunk
	// IsList specifies whether the node was framed as a "LIST" grouping
	// rather than a top level "RIFF" chunk. Display use only.
	IsList bool
}

// IsContainer reports whether the chunk is a container node.
func (c *Chunk) IsContainer() bool {
	return c.ID == IDRIFF || c.ID == IDLIST
}

// Child returns the first child chunk with the given identifier, or nil if
// none is present.
func (c *Chunk) Child(id string) *Chunk {
	for _, child := range c.Children {
		if child.ID == id {
			return child
		}
	}
	return nil
}

// DisplayID returns the chunk identifier with trailing spaces removed.
// Identifiers are stored space padded; trimming is for display only.
func (c *Chunk) DisplayID() string {
	return strings.TrimRight(c.ID, " ")
}

// Parse parses the provided buffer as a single RIFF chunk, which must span
// the buffer exactly.
func Parse(buf []byte) (*Chunk, error) {
	c, n, err := parseChunk(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, errors.Wrapf(ErrMalformedContainer, "trailing %d bytes after chunk %q", len(buf)-n, c.DisplayID())
	}
	return c, nil
}

// parseChunk parses one framed chunk from the start of buf and returns it
// along with the number of bytes consumed, pad byte included.
func parseChunk(buf []byte) (*Chunk, int, error) {
	if len(buf) < headerSize {
		return nil, 0, errors.Wrapf(ErrMalformedContainer, "truncated chunk header; got %d bytes, need %d", len(buf), headerSize)
	}
	id := string(buf[0:4])
	length := int(binary.LittleEndian.Uint32(buf[4:8]))
	if headerSize+length > len(buf) {
		return nil, 0, errors.Wrapf(ErrMalformedContainer, "chunk %q length %d overruns buffer of %d bytes", strings.TrimRight(id, " "), length, len(buf)-headerSize)
	}
	payload := buf[headerSize : headerSize+length]
	n := headerSize + length
	if length%2 != 0 {
		// Odd payloads are followed by a single zero pad byte.
		if n >= len(buf) {
			return nil, 0, errors.Wrapf(ErrMalformedContainer, "chunk %q missing pad byte", strings.TrimRight(id, " "))
		}
		if buf[n] != 0 {
			return nil, 0, errors.Wrapf(ErrMalformedContainer, "chunk %q pad byte 0x%02x is not zero", strings.TrimRight(id, " "), buf[n])
		}
		n++
	}

	c := &Chunk{ID: id}
	switch id {
	case IDRIFF, IDLIST:
		c.IsList = id == IDLIST
		if len(payload) < 4 {
			return nil, 0, errors.Wrapf(ErrMalformedContainer, "chunk %q payload too short for type tag", id)
		}
		c.Type = string(payload[0:4])
		rest := payload[4:]
		for len(rest) > 0 {
			child, cn, err := parseChunk(rest)
			if err != nil {
				return nil, 0, err
			}
			c.Children = append(c.Children, child)
			rest = rest[cn:]
		}
	default:
		c.Body = payload
	}
	return c, n, nil
}

// Len returns the payload length in bytes of the chunk, pad byte and header
// excluded. For container nodes this is 4 bytes of type tag plus the framed
// lengths of all children.
func (c *Chunk) Len() int {
	if !c.IsContainer() {
		return len(c.Body)
	}
	n := 4
	for _, child := range c.Children {
		n += child.framedLen()
	}
	return n
}

// framedLen returns the total serialized size of the chunk, header and pad
// byte included.
func (c *Chunk) framedLen() int {
	n := c.Len()
	if n%2 != 0 {
		n++
	}
	return headerSize + n
}

// Serialize encodes the chunk into its framed binary form. Serialize is the
// exact inverse of Parse; for any well-formed buffer b,
// Serialize(Parse(b)) == b.
func (c *Chunk) Serialize() []byte {
	buf := make([]byte, 0, c.framedLen())
	return c.appendTo(buf)
}

func (c *Chunk) appendTo(buf []byte) []byte {
	buf = append(buf, c.ID...)
	length := c.Len()
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(length))
	buf = append(buf, lenBuf[:]...)
	if c.IsContainer() {
		buf = append(buf, c.Type...)
		for _, child := range c.Children {
			buf = child.appendTo(buf)
		}
	} else {
		buf = append(buf, c.Body...)
	}
	if length%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}
