// Package crc implements the CRC-32 checksum used by ZIP local and central directory file headers.
//
// The polynomial is the reflected IEEE 802.3 polynomial 0xEDB88320 with a 0xFFFFFFFF seed and final XOR, which is
// the only variant ZIP readers accept.
//
// See https://en.wikipedia.org/wiki/ZIP_(file_format)#Local_file_header.
package crc

import (
	"hash"
	"sync"
)

// Size is the size of a CRC-32 checksum in bytes.
const Size = 4

// Polynomial is the reversed IEEE polynomial.
const Polynomial = 0xedb88320

var (
	tableOnce sync.Once
	table     *[256]uint32
)

// ieeeTable returns the process-wide lookup table, building it on first use.
func ieeeTable() *[256]uint32 {
	tableOnce.Do(func() {
		t := new([256]uint32)
		for i := range t {
			c := uint32(i)
			for range 8 {
				if c&1 == 1 {
					c = (c >> 1) ^ Polynomial
				} else {
					c >>= 1
				}
			}
			t[i] = c
		}
		table = t
	})

	return table
}

// Checksum returns the CRC-32 checksum of data.
//
// Checksum(nil) is 0.
func Checksum(data []byte) uint32 {
	return Update(0, data)
}

// Update returns the result of adding the bytes in p to crc.
//
// crc is a previous result of Checksum or Update (0 to start), so that Update(Update(0, a), b) equals
// Checksum(append(a, b...)).
func Update(crc uint32, p []byte) uint32 {
	t := ieeeTable()

	crc = ^crc
	for _, b := range p {
		crc = t[byte(crc)^b] ^ (crc >> 8)
	}

	return ^crc
}

// digest is the streaming hash.Hash32 returned by New.
type digest struct {
	crc uint32
}

// New returns a new hash.Hash32 computing the same checksum as Checksum.
//
// Sum appends the checksum in big-endian order, matching hash/crc32.
func New() hash.Hash32 {
	return &digest{}
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.crc = Update(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 {
	return d.crc
}

func (d *digest) Sum(b []byte) []byte {
	s := d.crc
	return append(b, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

func (d *digest) Reset() {
	d.crc = 0
}

func (d *digest) Size() int {
	return Size
}

func (d *digest) BlockSize() int {
	return 1
}
