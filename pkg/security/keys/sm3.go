package keys

import (
	"encoding/binary"
	"hash"
)

// sm3 implements the SM3 cryptographic hash function (GB/T 32905-2016).
// No example repo in the retrieval pack vendors a national-standard crypto
// library, so this module carries its own minimal implementation rather
// than depend on the standard library, which has no SM3 support; see
// DESIGN.md.
type sm3 struct {
	h   [8]uint32
	x   [64]byte
	nx  int
	len uint64
}

const sm3DigestSize = 32

var sm3IV = [8]uint32{
	0x7380166f, 0x4914b2b9, 0x172442d7, 0xda8a0600,
	0xa96f30bc, 0x163138aa, 0xe38dee4d, 0xb0fb0e4e,
}

// NewSm3 returns a new hash.Hash computing the SM3 checksum.
func NewSm3() hash.Hash {
	d := &sm3{}
	d.Reset()
	return d
}

func (d *sm3) Reset() {
	d.h = sm3IV
	d.nx = 0
	d.len = 0
}

func (d *sm3) Size() int      { return 32 }
func (d *sm3) BlockSize() int { return 64 }

func (d *sm3) Write(p []byte) (n int, err error) {
	n = len(p)
	d.len += uint64(n)
	if d.nx > 0 {
		k := copy(d.x[d.nx:], p)
		d.nx += k
		p = p[k:]
		if d.nx == 64 {
			sm3Block(&d.h, d.x[:])
			d.nx = 0
		}
	}
	for len(p) >= 64 {
		sm3Block(&d.h, p[:64])
		p = p[64:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return n, nil
}

func (d *sm3) Sum(in []byte) []byte {
	d0 := *d
	hashed := d0.checkSum()
	return append(in, hashed[:]...)
}

func (d *sm3) checkSum() [32]byte {
	lenBits := d.len * 8
	var tmp [72]byte
	tmp[0] = 0x80
	var pad []byte
	if d.nx < 56 {
		pad = tmp[:56-d.nx]
	} else {
		pad = tmp[:64+56-d.nx]
	}
	d.Write(pad)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], lenBits)
	d.Write(lenBuf[:])

	if d.nx != 0 {
		panic("keys: sm3 internal error, unflushed bytes at digest time")
	}

	var out [32]byte
	for i, v := range d.h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func rotl32(x uint32, n uint) uint32 { return x<<n | x>>(32-n) }

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

func p0(x uint32) uint32 { return x ^ rotl32(x, 9) ^ rotl32(x, 17) }
func p1(x uint32) uint32 { return x ^ rotl32(x, 15) ^ rotl32(x, 23) }

func sm3Block(h *[8]uint32, block []byte) {
	var w [68]uint32
	var wp [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for j := 16; j < 68; j++ {
		w[j] = p1(w[j-16]^w[j-9]^rotl32(w[j-3], 15)) ^ rotl32(w[j-13], 7) ^ w[j-6]
	}
	for j := 0; j < 64; j++ {
		wp[j] = w[j] ^ w[j+4]
	}

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]
	for j := 0; j < 64; j++ {
		tj := uint32(0x79cc4519)
		if j >= 16 {
			tj = 0x7a879d8a
		}
		ss1 := rotl32(rotl32(a, 12)+e+rotl32(tj, uint(j%32)), 7)
		ss2 := ss1 ^ rotl32(a, 12)
		tt1 := ff(j, a, b, c) + d + ss2 + wp[j]
		tt2 := gg(j, e, f, g) + hh + ss1 + w[j]
		d = c
		c = rotl32(b, 9)
		b = a
		a = tt1
		hh = g
		g = rotl32(f, 19)
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
}
