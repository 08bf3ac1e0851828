package nibble

import "github.com/adamgreen/snapncrackle/internal/errs"

// RW18 tracks carry 18 logical 256-byte pages, stored as six physical
// sectors of three interleaved pages each, per spec.md §4.11. Sectors are written (and
// read back) in descending order — 5, 4, 3, 2, 1, 0 — mirroring the
// original encoder; only the gap-3 sync between sectors changes with
// that order, not the final byte count.
const (
	SectorsPerRW18Track    = 6
	PagesPerRW18Sector     = 3
	RW18DecodedTrackBytes  = SectorsPerRW18Track * PagesPerRW18Sector * 256 // 4608, 18 logical pages
	RW18EncodedTrackBytes  = BytesPerTrack                                 // 6656: RW18 shares RWTS16's per-track nibble budget
)

const (
	rw18TrackLeadInSync = 403
	rw18TrackPrologLen  = 12
	rw18InterSectorSync = 5
	rw18Gap2Sync        = 2
	rw18Gap3Sync        = 1
)

// rw18TrackProlog is the fixed 12-byte marker written once per track
// after the long lead-in sync run.
var rw18TrackProlog = [rw18TrackPrologLen]byte{
	0xA5, 0x96, 0xBF, 0xFF, 0xFE, 0xAA, 0xBB, 0xAA, 0xAA, 0xFF, 0xEF, 0x9A,
}

// Bundle ids identify which physical side a track's data field came
// from, per spec.md §4.11.
const (
	BundleIDSideA   = 0xA9
	BundleIDSideB   = 0xAD
	BundleIDSideAlt = 0x79
)

// WriteRW18Track renders one RW18DecodedTrackBytes-long logical track
// (18 pages of 256 bytes: sector s owns pages s, s+6, s+12) as an
// RW18EncodedTrackBytes-long nibble stream.
func WriteRW18Track(track byte, bundleID byte, decoded *[RW18DecodedTrackBytes]byte) []byte {
	out := make([]byte, 0, RW18EncodedTrackBytes)
	for i := 0; i < rw18TrackLeadInSync; i++ {
		out = append(out, syncByte)
	}
	out = append(out, rw18TrackProlog[:]...)

	sector := byte(SectorsPerRW18Track - 1)
	out = appendRW18Sector(out, track, sector, bundleID, decoded)
	for sector > 0 {
		sector--
		for i := 0; i < rw18InterSectorSync; i++ {
			out = append(out, syncByte)
		}
		out = appendRW18Sector(out, track, sector, bundleID, decoded)
	}
	return out
}

func appendRW18Sector(out []byte, track, sector, bundleID byte, decoded *[RW18DecodedTrackBytes]byte) []byte {
	out = append(out, addrPrologByte0, 0x9D)
	out = append(out, encode6to8(track), encode6to8(sector), encode6to8(track^sector))
	out = append(out, addrEpilog1)

	for i := 0; i < rw18Gap2Sync; i++ {
		out = append(out, syncByte)
	}

	out = append(out, bundleID)
	out = append(out, encodeRW18Sector(decoded, int(sector))...)
	out = append(out, 0xD4)

	for i := 0; i < rw18Gap3Sync; i++ {
		out = append(out, syncByte)
	}
	return out
}

// encodeRW18Sector nibblizes the three 256-byte pages belonging to
// sector, interleaving 6-bit quantities from all three pages per byte
// position and XOR-chaining a running checksum.
func encodeRW18Sector(decoded *[RW18DecodedTrackBytes]byte, sector int) []byte {
	page := func(p int) []byte {
		start := (sector + p*SectorsPerRW18Track) * 256
		return decoded[start : start+256]
	}
	p0, p1, p2 := page(0), page(1), page(2)

	out := make([]byte, 0, 256*4+1)
	var checksum byte
	for i := 0; i < 256; i++ {
		b0, b1, b2 := p0[i], p1[i], p2[i]
		aux := ((b0 & 0xC0) >> 2) | ((b1 & 0xC0) >> 4) | ((b2 & 0xC0) >> 6)
		v0, v1, v2 := b0&0x3F, b1&0x3F, b2&0x3F
		checksum ^= aux ^ v0 ^ v1 ^ v2
		out = append(out, encode6to8(aux), encode6to8(v0), encode6to8(v1), encode6to8(v2))
	}
	out = append(out, encode6to8(checksum))
	return out
}

// ReadRW18Track is WriteRW18Track's inverse: it validates every prolog,
// epilog and checksum byte and returns the reconstructed
// RW18DecodedTrackBytes-long logical track, or a BadTrack error
// describing the first mismatch found.
func ReadRW18Track(encoded []byte, track, bundleID byte) (*[RW18DecodedTrackBytes]byte, error) {
	pos := 0
	need := func(n int) error {
		if pos+n > len(encoded) {
			return errs.Errorf(errs.BadTrack, "truncated before offset")
		}
		return nil
	}
	expectSync := func(n int) error {
		if err := need(n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if encoded[pos+i] != syncByte {
				return errs.Errorf(errs.BadTrack, "expected sync byte")
			}
		}
		pos += n
		return nil
	}

	if err := expectSync(rw18TrackLeadInSync); err != nil {
		return nil, err
	}
	if err := need(rw18TrackPrologLen); err != nil {
		return nil, err
	}
	for i := 0; i < rw18TrackPrologLen; i++ {
		if encoded[pos+i] != rw18TrackProlog[i] {
			return nil, errs.Errorf(errs.BadTrack, "bad track prolog")
		}
	}
	pos += rw18TrackPrologLen

	var decoded [RW18DecodedTrackBytes]byte
	sector := byte(SectorsPerRW18Track - 1)
	if err := readRW18Sector(encoded, &pos, track, sector, bundleID, &decoded); err != nil {
		return nil, err
	}
	for sector > 0 {
		sector--
		if err := expectSync(rw18InterSectorSync); err != nil {
			return nil, err
		}
		if err := readRW18Sector(encoded, &pos, track, sector, bundleID, &decoded); err != nil {
			return nil, err
		}
	}

	return &decoded, nil
}

func readRW18Sector(encoded []byte, pos *int, track, sector, bundleID byte, decoded *[RW18DecodedTrackBytes]byte) error {
	need := func(n int) error {
		if *pos+n > len(encoded) {
			return errs.Errorf(errs.BadTrack, "truncated before offset")
		}
		return nil
	}

	if err := need(2); err != nil {
		return err
	}
	if encoded[*pos] != addrPrologByte0 || encoded[*pos+1] != 0x9D {
		return errs.Errorf(errs.BadTrack, "bad address prolog")
	}
	*pos += 2

	if err := need(3); err != nil {
		return err
	}
	gotTrack, err := decode6to8(encoded[*pos])
	if err != nil {
		return err
	}
	gotSector, err := decode6to8(encoded[*pos+1])
	if err != nil {
		return err
	}
	gotXor, err := decode6to8(encoded[*pos+2])
	if err != nil {
		return err
	}
	if gotTrack != track || gotSector != sector || gotXor != (gotTrack^gotSector) {
		return errs.Errorf(errs.BadTrack, "address field mismatch")
	}
	*pos += 3

	if err := need(1); err != nil {
		return err
	}
	if encoded[*pos] != addrEpilog1 {
		return errs.Errorf(errs.BadTrack, "bad address epilog")
	}
	*pos++

	for i := 0; i < rw18Gap2Sync; i++ {
		if err := need(1); err != nil {
			return err
		}
		if encoded[*pos] != syncByte {
			return errs.Errorf(errs.BadTrack, "expected sync byte")
		}
		*pos++
	}

	if err := need(1); err != nil {
		return err
	}
	if encoded[*pos] != bundleID {
		return errs.Errorf(errs.BadTrack, "bundle id mismatch")
	}
	*pos++

	if err := decodeRW18Sector(encoded, pos, decoded, int(sector)); err != nil {
		return err
	}

	if err := need(1); err != nil {
		return err
	}
	if encoded[*pos] != 0xD4 {
		return errs.Errorf(errs.BadTrack, "bad data epilog")
	}
	*pos++

	for i := 0; i < rw18Gap3Sync; i++ {
		if err := need(1); err != nil {
			return err
		}
		if encoded[*pos] != syncByte {
			return errs.Errorf(errs.BadTrack, "expected sync byte")
		}
		*pos++
	}

	return nil
}

func decodeRW18Sector(encoded []byte, pos *int, decoded *[RW18DecodedTrackBytes]byte, sector int) error {
	page := func(p int) []byte {
		start := (sector + p*SectorsPerRW18Track) * 256
		return decoded[start : start+256]
	}
	p0, p1, p2 := page(0), page(1), page(2)

	var checksum byte
	for i := 0; i < 256; i++ {
		if *pos+4 > len(encoded) {
			return errs.Errorf(errs.BadTrack, "truncated data field")
		}
		aux, err := decode6to8(encoded[*pos])
		if err != nil {
			return err
		}
		v0, err := decode6to8(encoded[*pos+1])
		if err != nil {
			return err
		}
		v1, err := decode6to8(encoded[*pos+2])
		if err != nil {
			return err
		}
		v2, err := decode6to8(encoded[*pos+3])
		if err != nil {
			return err
		}
		*pos += 4
		checksum ^= aux ^ v0 ^ v1 ^ v2

		p0[i] = v0 | (((aux >> 4) & 0x03) << 6)
		p1[i] = v1 | (((aux >> 2) & 0x03) << 6)
		p2[i] = v2 | ((aux & 0x03) << 6)
	}

	if *pos >= len(encoded) {
		return errs.Errorf(errs.BadTrack, "truncated checksum nibble")
	}
	gotChecksum, err := decode6to8(encoded[*pos])
	if err != nil {
		return err
	}
	*pos++
	if gotChecksum != checksum {
		return errs.Errorf(errs.BadTrack, "data checksum mismatch")
	}
	return nil
}
