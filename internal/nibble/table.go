// Package nibble implements the bit-exact Apple II disk nibble codecs:
// RWTS16 (16-sector, 6-and-2 group encoding) and RW18 (18-sector,
// Prince-of-Persia-style variant), plus RW18's inverse reader.
// Grounded on spec.md §4.10/§4.11; this repository's teacher pack has
// no disk-nibble analogue, so the codec is written directly from the
// spec's byte-level description rather than adapted from an example.
package nibble

import "github.com/adamgreen/snapncrackle/internal/errs"

// sixToEight is the classic DOS 3.3 "write translate" table: 64 entries
// mapping a 6-bit value to a legal self-sync on-disk byte (high bit
// set, no two adjacent zero bits), per spec.md §4.10.
var sixToEight = [64]byte{
	0x96, 0x97, 0x9a, 0x9b, 0x9d, 0x9e, 0x9f, 0xa6,
	0xa7, 0xab, 0xac, 0xad, 0xae, 0xaf, 0xb2, 0xb3,
	0xb4, 0xb5, 0xb6, 0xb7, 0xb9, 0xba, 0xbb, 0xbc,
	0xbd, 0xbe, 0xbf, 0xcb, 0xcd, 0xce, 0xcf, 0xd3,
	0xd6, 0xd7, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde,
	0xdf, 0xe5, 0xe6, 0xe7, 0xe9, 0xea, 0xeb, 0xec,
	0xed, 0xee, 0xef, 0xf2, 0xf3, 0xf4, 0xf5, 0xf6,
	0xf7, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe, 0xff,
}

// eightToSix is sixToEight's inverse, built once at package init.
var eightToSix [256]int16

func init() {
	for i := range eightToSix {
		eightToSix[i] = -1
	}
	for six, eight := range sixToEight {
		eightToSix[eight] = int16(six)
	}
}

func encode6to8(v byte) byte { return sixToEight[v&0x3F] }

func decode6to8(b byte) (byte, error) {
	v := eightToSix[b]
	if v < 0 {
		return 0, errs.Errorf(errs.BadTrack, "illegal on-disk nibble")
	}
	return byte(v), nil
}

// Sync bytes and field delimiters shared by both disk formats.
const (
	syncByte = 0xFF

	addrPrologByte0 = 0xD5
	addrPrologByte1 = 0xAA
	addrEpilog0     = 0xDE
	addrEpilog1     = 0xAA
	addrEpilog2     = 0xEB
)
