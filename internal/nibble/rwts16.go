package nibble

// BytesPerSector is the fixed nibble footprint spec.md §4.10 allocates to
// every RWTS16 sector: lead-in sync + address field + gap2 + data field,
// padded with trailing sync to this constant size.
const BytesPerSector = 416

// SectorsPerTrack and TracksPerDisk describe a standard 16-sector image.
const (
	SectorsPerTrack = 16
	TracksPerDisk   = 35
)

// BytesPerTrack and TotalImageBytes are the derived RWTS16 image
// dimensions (232960 bytes total).
const (
	BytesPerTrack    = SectorsPerTrack * BytesPerSector
	TotalImageBytes  = TracksPerDisk * BytesPerTrack
)

// leadInSync returns the number of $FF sync bytes preceding sector 0's
// address field (a long 48-byte settle) versus every other sector (5).
func leadInSync(sector int) int {
	if sector == 0 {
		return 48
	}
	return 5
}

// rwts16CPMagic is the fixed 18-byte nibble sequence copy-protected
// RWTS16CP sectors carry in their data field in place of a real 6-and-2
// encode of sector content. These are already-legal on-disk nibbles, not
// 6-bit values awaiting a further encode step, so they are copied in
// verbatim rather than passed through encode6to8.
var rwts16CPMagic = [18]byte{
	0xe7, 0xe7, 0xe7, 0xe7, 0xe7, 0xe7, 0xaf, 0xf3, 0xfc,
	0xee, 0xe7, 0xfc, 0xee, 0xe7, 0xfc, 0xee, 0xee, 0xfc,
}

// EncodeRWTS16Sector renders one 256-byte sector's worth of data as a
// BytesPerSector-long nibble stream: lead-in sync, 4-and-4 address
// field, gap2 sync, 6-and-2 data field, trailing sync pad.
func EncodeRWTS16Sector(volume, track, sector byte, data *[256]byte) []byte {
	return encodeRWTS16(volume, track, sector, encode6and2(data))
}

// EncodeRWTS16CPSector is EncodeRWTS16Sector's copy-protected sibling:
// the data field carries rwts16CPMagic padded with sync instead of a
// real 6-and-2 encoding of sector content.
func EncodeRWTS16CPSector(volume, track, sector byte) []byte {
	payload := make([]byte, 343)
	copy(payload, rwts16CPMagic[:])
	for i := len(rwts16CPMagic); i < len(payload); i++ {
		payload[i] = syncByte
	}
	return encodeRWTS16(volume, track, sector, payload)
}

func encodeRWTS16(volume, track, sector byte, dataField []byte) []byte {
	out := make([]byte, 0, BytesPerSector)

	for i := 0; i < leadInSync(int(sector)); i++ {
		out = append(out, syncByte)
	}

	out = append(out, addrPrologByte0, addrPrologByte1, 0x96)
	checksum := volume ^ track ^ sector
	out = append(out, encode4and4(volume)...)
	out = append(out, encode4and4(track)...)
	out = append(out, encode4and4(sector)...)
	out = append(out, encode4and4(checksum)...)
	out = append(out, addrEpilog0, addrEpilog1, addrEpilog2)

	for i := 0; i < 5; i++ {
		out = append(out, syncByte)
	}

	out = append(out, addrPrologByte0, addrPrologByte1, 0xAD)
	out = append(out, dataField...)
	out = append(out, addrEpilog0, addrEpilog1, addrEpilog2)

	for len(out) < BytesPerSector {
		out = append(out, syncByte)
	}
	return out
}

// encode4and4 renders one byte as the two self-sync bytes used by the
// address field, per spec.md §4.10.
func encode4and4(b byte) []byte {
	return []byte{
		0xAA | ((b & 0xAA) >> 1),
		0xAA | (b & 0x55),
	}
}

// bitPairSwap reorders a byte's two low bits, the building block for the
// 6-and-2 data field's auxiliary buffer.
func bitPairSwap(b byte) byte {
	return ((b & 0x01) << 1) | ((b & 0x02) >> 1)
}

// encode6and2 renders 256 data bytes as 343 on-disk nibbles: 86
// auxiliary bytes carrying the low two bits of three data bytes apiece,
// then the 256 data bytes' high six bits, then a checksum nibble. Each
// nibble is the 6-to-8 encode of the raw value XOR'd with the
// previously-processed raw value ("lastByte" below) rather than a
// cumulative XOR accumulator — the classic DOS 3.3 nibblizing trick,
// byte-offset arithmetic included, per spec.md §4.10.
func encode6and2(data *[256]byte) []byte {
	byteAt := func(offset byte) byte { return data[offset] }

	var aux [86]byte
	for i := 0; i < 86; i++ {
		lowByte := byteAt(byte(0x55 - i))
		midByte := byteAt(byte(0xAB - i))
		highByte := byteAt(byte(0x101 - i))
		aux[i] = bitPairSwap(highByte)<<4 | bitPairSwap(midByte)<<2 | bitPairSwap(lowByte)
	}

	out := make([]byte, 0, 343)
	var last byte
	nibbilize := func(raw byte) byte {
		encoded := encode6to8(raw ^ last)
		last = raw
		return encoded
	}

	for i := 85; i >= 0; i-- {
		out = append(out, nibbilize(aux[i]))
	}
	for i := 0; i < 256; i++ {
		out = append(out, nibbilize(data[i]>>2))
	}
	out = append(out, nibbilize(0))
	return out
}
