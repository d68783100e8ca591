package wayland

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire header layout (8 bytes, little-endian):
// uint32 object  // sender (events) or target (requests)
// uint32 sizeOp  // message size in bytes << 16 | opcode
const headerSize = 8

// maxMessageSize is the largest message the 16-bit size field can describe.
const maxMessageSize = math.MaxUint16

var errShortMessage = errors.New("wayland: message truncated")

// Header is a decoded message header.
type Header struct {
	Object uint32
	Opcode uint16
	Size   uint16
}

// ReadHeader decodes the header at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, errShortMessage
	}
	sizeOp := binary.LittleEndian.Uint32(b[4:8])
	h := Header{
		Object: binary.LittleEndian.Uint32(b[0:4]),
		Opcode: uint16(sizeOp & 0xffff),
		Size:   uint16(sizeOp >> 16),
	}
	if h.Size < headerSize || h.Size%4 != 0 {
		return Header{}, fmt.Errorf("wayland: invalid message size %d", h.Size)
	}
	return h, nil
}

// Fixed is a signed 24.8 fixed-point number.
type Fixed int32

// FixedFromFloat converts f to fixed point.
func FixedFromFloat(f float64) Fixed { return Fixed(math.Round(f * 256)) }

// Float returns the value as a float64.
func (f Fixed) Float() float64 { return float64(f) / 256 }

// FD marks an argument as a file descriptor to pass with SCM_RIGHTS.
type FD int

// AppendMessage encodes one message onto dst. Supported argument types are
// int32 (int), uint32 (uint, object, new_id), Fixed, string, []byte (array)
// and FD. File descriptors are returned separately since they travel out of
// band.
func AppendMessage(dst []byte, object uint32, opcode uint16, args ...any) ([]byte, []int, error) {
	start := len(dst)
	dst = append(dst, make([]byte, headerSize)...)

	var fds []int
	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		case uint32:
			dst = binary.LittleEndian.AppendUint32(dst, v)
		case Fixed:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		case string:
			dst = appendString(dst, v)
		case []byte:
			dst = appendArray(dst, v)
		case FD:
			fds = append(fds, int(v))
		default:
			return dst[:start], nil, fmt.Errorf("wayland: unsupported argument type %T", arg)
		}
	}

	size := len(dst) - start
	if size > maxMessageSize {
		return dst[:start], nil, fmt.Errorf("wayland: message too large (%d bytes)", size)
	}
	binary.LittleEndian.PutUint32(dst[start:], object)
	binary.LittleEndian.PutUint32(dst[start+4:], uint32(size)<<16|uint32(opcode))
	return dst, fds, nil
}

// Strings carry their length including the NUL terminator and are padded
// to 32 bits.
func appendString(dst []byte, s string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)+1))
	dst = append(dst, s...)
	dst = append(dst, 0)
	return pad(dst, len(s)+1)
}

func appendArray(dst []byte, b []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(b)))
	dst = append(dst, b...)
	return pad(dst, len(b))
}

func pad(dst []byte, n int) []byte {
	for ; n%4 != 0; n++ {
		dst = append(dst, 0)
	}
	return dst
}

// Decoder reads arguments from a message payload. The first decoding error
// is sticky and reported by Err.
type Decoder struct {
	data []byte
	off  int
	err  error
}

// NewDecoder returns a decoder over payload (the message without header).
func NewDecoder(payload []byte) *Decoder {
	return &Decoder{data: payload}
}

// Err returns the first decoding error.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) word() uint32 {
	if d.err != nil {
		return 0
	}
	if d.off+4 > len(d.data) {
		d.err = errShortMessage
		return 0
	}
	v := binary.LittleEndian.Uint32(d.data[d.off:])
	d.off += 4
	return v
}

// Uint reads a uint, object or new_id argument.
func (d *Decoder) Uint() uint32 { return d.word() }

// Int reads an int argument.
func (d *Decoder) Int() int32 { return int32(d.word()) }

// Fixed reads a fixed argument.
func (d *Decoder) Fixed() Fixed { return Fixed(d.word()) }

// Array reads an array argument. The returned slice aliases the payload.
func (d *Decoder) Array() []byte {
	n := int(d.word())
	if d.err != nil {
		return nil
	}
	padded := (n + 3) &^ 3
	if n < 0 || d.off+padded > len(d.data) {
		d.err = errShortMessage
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += padded
	return b
}

// String reads a string argument. A zero length decodes as "".
func (d *Decoder) String() string {
	b := d.Array()
	if len(b) == 0 {
		return ""
	}
	if b[len(b)-1] != 0 {
		if d.err == nil {
			d.err = errors.New("wayland: string not NUL terminated")
		}
		return ""
	}
	return string(b[:len(b)-1])
}
