package nibble

import (
	"github.com/adamgreen/snapncrackle/internal/diskscript"
	"github.com/adamgreen/snapncrackle/internal/errs"
)

// Image is a flat TotalImageBytes-long RWTS16-format nibble disk image
// (35 tracks of BytesPerTrack each), built up one insert at a time.
// Grounded on the original's NibbleDiskImage: a single malloc'd buffer
// addressed by track*BytesPerTrack+sector*BytesPerSector.
type Image struct {
	data [TotalImageBytes]byte
}

// NewImage returns a zero-filled image.
func NewImage() *Image { return &Image{} }

// Bytes returns the full backing array.
func (img *Image) Bytes() []byte { return img.data[:] }

// Insert implements diskscript.Target: RWTS16, RWTS16CP and RW18 rows
// land here; BLOCK rows belong to blockimage.Image instead.
func (img *Image) Insert(ins diskscript.Insert, data []byte) error {
	switch ins.Kind {
	case diskscript.KindRWTS16:
		return img.insertRWTS16(ins, data)
	case diskscript.KindRWTS16CP:
		return img.InsertRWTS16CP(0, ins.Track, ins.Sector)
	case diskscript.KindRW18:
		return img.insertRW18Run(ins, data)
	default:
		return errs.Errorf(errs.InvalidInsertionType, "nibble image")
	}
}

func checkTrackSector(track, sector int) error {
	if track < 0 || track >= TracksPerDisk {
		return errs.Errorf(errs.InvalidTrack, track)
	}
	if sector < 0 || sector >= SectorsPerTrack {
		return errs.Errorf(errs.InvalidSector, sector)
	}
	return nil
}

// insertRWTS16 writes data across as many consecutive sectors as it
// takes, 256 bytes at a time, wrapping sector into track as it goes.
// Grounded on NibbleDiskImage.c's insertRWTS16Data/advanceToNextSector.
func (img *Image) insertRWTS16(ins diskscript.Insert, data []byte) error {
	track, sector := ins.Track, ins.Sector
	bytesLeft := ins.Length
	offset := 0
	for bytesLeft > 0 {
		var sector256 [256]byte
		copy(sector256[:], data[offset:])
		if err := img.InsertRWTS16Sector(0, track, sector, &sector256); err != nil {
			return err
		}
		bytesLeft -= 256
		offset += 256
		sector++
		if sector >= SectorsPerTrack {
			sector = 0
			track++
		}
	}
	return nil
}

// InsertRWTS16Sector nibblizes one 256-byte sector and writes it at its
// fixed track/sector offset.
func (img *Image) InsertRWTS16Sector(volume byte, track, sector int, data *[256]byte) error {
	if err := checkTrackSector(track, sector); err != nil {
		return err
	}
	encoded := EncodeRWTS16Sector(volume, byte(track), byte(sector), data)
	offset := track*BytesPerTrack + sector*BytesPerSector
	copy(img.data[offset:offset+BytesPerSector], encoded)
	return nil
}

// InsertRWTS16CP writes a copy-protected sector: same address field, but
// a fixed magic-nibble data field rather than a real encode.
func (img *Image) InsertRWTS16CP(volume byte, track, sector int) error {
	if err := checkTrackSector(track, sector); err != nil {
		return err
	}
	encoded := EncodeRWTS16CPSector(volume, byte(track), byte(sector))
	offset := track*BytesPerTrack + sector*BytesPerSector
	copy(img.data[offset:offset+BytesPerSector], encoded)
	return nil
}

// insertRW18Run writes data across as many consecutive RW18 tracks as
// it takes, starting intraTrackOffset bytes into the first one and
// starting at offset 0 in every track after that. Grounded on
// NibbleDiskImage.c's insertRW18Data/advanceToNextRW18Track.
func (img *Image) insertRW18Run(ins diskscript.Insert, data []byte) error {
	track := ins.Track
	intraTrackOffset := ins.IntraTrackOffset
	bytesLeft := ins.Length
	offset := 0

	for bytesLeft > 0 {
		copyBytes := RW18DecodedTrackBytes - intraTrackOffset
		if copyBytes > bytesLeft {
			copyBytes = bytesLeft
		}
		if err := img.InsertRW18Track(ins.Side, track, intraTrackOffset, data[offset:offset+copyBytes]); err != nil {
			return err
		}
		bytesLeft -= copyBytes
		offset += copyBytes
		intraTrackOffset = 0
		track++
	}
	return nil
}

// InsertRW18Track copies src into an RW18 track's logical decoded
// buffer starting at intraTrackOffset, read-modify-write: it reads the
// track's current contents back (falling back to a zero-filled buffer
// if the track hasn't been written yet or fails to decode), splices the
// new bytes in, and re-encodes the whole track in place. Grounded on
// NibbleDiskImage.c's writeRW18Track/initTrackData/
// readCurrentTrackContentsOrZeroFill.
func (img *Image) InsertRW18Track(bundleID byte, track int, intraTrackOffset int, src []byte) error {
	if track < 0 || track >= TracksPerDisk {
		return errs.Errorf(errs.InvalidTrack, track)
	}
	if intraTrackOffset < 0 || intraTrackOffset+len(src) > RW18DecodedTrackBytes {
		return errs.Errorf(errs.InvalidIntraTrackOffset, intraTrackOffset)
	}

	trackOffset := track * BytesPerTrack
	encoded := img.data[trackOffset : trackOffset+RW18EncodedTrackBytes]

	decoded, err := ReadRW18Track(encoded, byte(track), bundleID)
	if err != nil {
		decoded = &[RW18DecodedTrackBytes]byte{}
	}

	copy(decoded[intraTrackOffset:], src)

	copy(encoded, WriteRW18Track(byte(track), bundleID, decoded))
	return nil
}
