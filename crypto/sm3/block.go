package sm3

import (
	"encoding/binary"
	"math/bits"
)

const (
	_T0 = 0x79cc4519
	_T1 = 0x7a879d8a
)

// _T holds the round constants T_j rotated left by j, as consumed by round j.
var _T = func() (t [64]uint32) {
	for j := range t {
		if j < 16 {
			t[j] = bits.RotateLeft32(_T0, j)
		} else {
			t[j] = bits.RotateLeft32(_T1, j%32)
		}
	}
	return
}()

func ff(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (x & z) | (y & z)
}

func gg(j int, x, y, z uint32) uint32 {
	if j < 16 {
		return x ^ y ^ z
	}
	return (x & y) | (^x & z)
}

func p0(x uint32) uint32 {
	return x ^ bits.RotateLeft32(x, 9) ^ bits.RotateLeft32(x, 17)
}

func p1(x uint32) uint32 {
	return x ^ bits.RotateLeft32(x, 15) ^ bits.RotateLeft32(x, 23)
}

// block compresses every whole block of p into h.
func block(h *[8]uint32, p []byte) {
	// w is a ring over the message schedule: slot n&15 holds W[n].
	var w [16]uint32
	for len(p) >= BlockSize {
		for i := range w {
			w[i] = binary.BigEndian.Uint32(p[i*4:])
		}

		a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

		for j := 0; j < 64; j++ {
			if j >= 12 {
				// W[j+4] overwrites W[j-12], its oldest input.
				n := j + 4
				w[n&15] = p1(w[(n-16)&15]^w[(n-9)&15]^bits.RotateLeft32(w[(n-3)&15], 15)) ^
					bits.RotateLeft32(w[(n-13)&15], 7) ^ w[(n-6)&15]
			}
			wj := w[j&15]

			a12 := bits.RotateLeft32(a, 12)
			ss1 := bits.RotateLeft32(a12+e+_T[j], 7)
			ss2 := ss1 ^ a12
			tt1 := ff(j, a, b, c) + d + ss2 + (wj ^ w[(j+4)&15])
			tt2 := gg(j, e, f, g) + hh + ss1 + wj

			d = c
			c = bits.RotateLeft32(b, 9)
			b = a
			a = tt1
			hh = g
			g = bits.RotateLeft32(f, 19)
			f = e
			e = p0(tt2)
		}

		h[0] ^= a
		h[1] ^= b
		h[2] ^= c
		h[3] ^= d
		h[4] ^= e
		h[5] ^= f
		h[6] ^= g
		h[7] ^= hh

		p = p[BlockSize:]
	}
}
