// Package sm3 implements the ShangMi SM3 hash algorithm as defined in
// GB/T 32905-2016.
package sm3

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
)

// Size the size of a SM3 checksum in bytes.
const Size = 32

// BlockSize the blocksize of SM3 in bytes.
const BlockSize = 64

const (
	init0 = 0x7380166f
	init1 = 0x4914b2b9
	init2 = 0x172442d7
	init3 = 0xda8a0600
	init4 = 0xa96f30bc
	init5 = 0x163138aa
	init6 = 0xe38dee4d
	init7 = 0xb0fb0e4e
)

var (
	ErrInvalidState     = errors.New("sm3: invalid hash state identifier")
	ErrInvalidStateSize = errors.New("sm3: invalid hash state size")
)

var (
	_ hash.Hash = (*Digest)(nil)
)

// Digest is an in-progress SM3 computation. The zero value is not ready for
// use, call New or Reset first.
type Digest struct {
	h    [8]uint32
	x    [BlockSize]byte
	nx   int
	bits uint64
}

// Checksum is the result of a finalized Digest.
type Checksum [Size]byte

// Bytes returns a copy of the checksum as a slice.
func (c Checksum) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, c[:])
	return b
}

// String returns the lowercase hex form of the checksum.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

const (
	magic         = "sm3\x03"
	marshaledSize = len(magic) + 8*4 + BlockSize + 8
)

func (d *Digest) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, marshaledSize)
	b = append(b, magic...)
	for _, v := range d.h {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	b = append(b, d.x[:d.nx]...)
	b = b[:len(b)+len(d.x)-d.nx] // already zero
	b = binary.BigEndian.AppendUint64(b, d.bits)
	return b, nil
}

func (d *Digest) UnmarshalBinary(b []byte) error {
	if len(b) < len(magic) || string(b[:len(magic)]) != magic {
		return ErrInvalidState
	}
	if len(b) != marshaledSize {
		return ErrInvalidStateSize
	}
	b = b[len(magic):]
	for i := range d.h {
		d.h[i] = binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	b = b[copy(d.x[:], b):]
	d.bits = binary.BigEndian.Uint64(b)
	d.nx = int((d.bits >> 3) % BlockSize)
	return nil
}

// New returns a new Digest computing the SM3 checksum. The Digest also
// implements encoding.BinaryMarshaler and encoding.BinaryUnmarshaler to
// marshal and unmarshal the internal state of the hash.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset resets the Digest to its initial state.
func (d *Digest) Reset() {
	d.h = [8]uint32{init0, init1, init2, init3, init4, init5, init6, init7}
	d.nx = 0
	d.bits = 0
}

func (d *Digest) Size() int { return Size }

func (d *Digest) BlockSize() int { return BlockSize }

// Write absorbs p into the digest. It never fails.
func (d *Digest) Write(p []byte) (nn int, err error) {
	nn = len(p)
	d.bits += uint64(nn) << 3
	if d.nx > 0 {
		n := copy(d.x[d.nx:], p)
		d.nx += n
		if d.nx == BlockSize {
			block(&d.h, d.x[:])
			d.nx = 0
		}
		p = p[n:]
	}
	if len(p) >= BlockSize {
		n := len(p) &^ (BlockSize - 1)
		block(&d.h, p[:n])
		p = p[n:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return
}

// Finalize pads the absorbed input and returns its checksum. The receiver
// is left untouched, so writing may continue afterwards.
func (d *Digest) Finalize() Checksum {
	d0 := *d
	return d0.checkSum()
}

// Sum appends the current hash to in and returns the resulting slice.
// It does not change the underlying hash state.
func (d *Digest) Sum(in []byte) []byte {
	sum := d.Finalize()
	return append(in, sum[:]...)
}

func (d *Digest) checkSum() (sum Checksum) {
	var tmp [BlockSize]byte
	copy(tmp[:], d.x[:d.nx])
	tmp[d.nx] = 0x80
	// 0x80 and the 64-bit length must both fit, otherwise spill into a second block.
	if d.nx+1+8 > BlockSize {
		block(&d.h, tmp[:])
		tmp = [BlockSize]byte{}
	}
	binary.BigEndian.PutUint64(tmp[BlockSize-8:], d.bits)
	block(&d.h, tmp[:])
	d.nx = 0

	for i, v := range d.h {
		binary.BigEndian.PutUint32(sum[i*4:], v)
	}
	return
}

// Sum returns the SM3 checksum of the data.
func Sum(data []byte) Checksum {
	var d Digest
	d.Reset()
	d.Write(data)
	return d.checkSum()
}
