// Package blockimage implements the flat block-addressed disk image used
// by .2mg/.hdv output: a byte-for-byte memcpy target with no nibble
// encoding at all. RW18 insertions still land here after their
// side/track/sector coordinates are converted to a block and intra-block
// offset. Grounded on the original BlockDiskImage.c.
package blockimage

import (
	"github.com/adamgreen/snapncrackle/internal/diskscript"
	"github.com/adamgreen/snapncrackle/internal/errs"
)

// Geometry constants shared with the original DiskImage.h.
const (
	BytesPerBlock  = 512
	BytesPerSector = 256
)

const (
	sectorsPerBlock     = 2
	tracksPerSide       = 35
	rw18SectorsPerTrack = 18
)

// RW18 side identifiers, matching the bundle ids used by the nibble
// package for the same physical sides.
const (
	SideA   = 0xA9
	SideB   = 0xAD
	SideAlt = 0x79
)

// Image is a flat, block-addressed disk image of blockCount blocks.
type Image struct {
	data []byte
}

// New returns a zero-filled image of blockCount blocks.
func New(blockCount int) *Image {
	return &Image{data: make([]byte, blockCount*BytesPerBlock)}
}

// Bytes returns the full backing array.
func (img *Image) Bytes() []byte { return img.data }

// BlockCount reports the image's size in blocks.
func (img *Image) BlockCount() int { return len(img.data) / BytesPerBlock }

// Insert implements diskscript.Target: BLOCK rows land here directly;
// RW18 rows land here via the side/track/sector-to-block conversion.
// RWTS16 and RWTS16CP rows have no block-image equivalent and are
// rejected.
func (img *Image) Insert(ins diskscript.Insert, data []byte) error {
	switch ins.Kind {
	case diskscript.KindBlock:
		return img.InsertBlock(ins.Block, ins.IntraBlockOffset, data)
	case diskscript.KindRW18:
		return img.insertRW18Run(ins.Side, ins.Track, ins.IntraTrackOffset, data)
	default:
		return errs.Errorf(errs.InvalidInsertionType, "block image")
	}
}

// insertRW18Run splits a script row's whole-track-relative intraTrackOffset
// (addressed across RW18DecodedTrackBytes = 4608 bytes, eighteen times
// the per-sector BytesPerSector) into the (track, sector, intraSectorOffset)
// triple InsertRW18 expects, chunking the copy at sector boundaries and
// rolling into the next track exactly as the nibble image's equivalent
// run does.
func (img *Image) insertRW18Run(side byte, track, intraTrackOffset int, data []byte) error {
	offset := 0
	bytesLeft := len(data)
	for bytesLeft > 0 {
		sector := intraTrackOffset / BytesPerSector
		intraSectorOffset := intraTrackOffset % BytesPerSector
		copyBytes := BytesPerSector - intraSectorOffset
		if copyBytes > bytesLeft {
			copyBytes = bytesLeft
		}
		if err := img.InsertRW18(side, track, sector, intraSectorOffset, data[offset:offset+copyBytes]); err != nil {
			return err
		}
		bytesLeft -= copyBytes
		offset += copyBytes
		intraTrackOffset += copyBytes
		if intraTrackOffset >= rw18SectorsPerTrack*BytesPerSector {
			intraTrackOffset = 0
			track++
		}
	}
	return nil
}

// InsertBlock copies src into block, starting intraBlockOffset bytes into
// it. Grounded on BlockDiskImage.c's insertBlockData.
func (img *Image) InsertBlock(block, intraBlockOffset int, src []byte) error {
	if intraBlockOffset < 0 || intraBlockOffset >= BytesPerBlock {
		return errs.Errorf(errs.InvalidIntraBlockOffset, intraBlockOffset)
	}
	start := block*BytesPerBlock + intraBlockOffset
	end := start + len(src)
	if block < 0 || end > len(img.data) {
		return errs.Errorf(errs.BlockExceedsImageBounds, block)
	}
	copy(img.data[start:end], src)
	return nil
}

// startBlockForSide returns the first block belonging to an RW18 side,
// matching the original's fixed per-side layout.
func startBlockForSide(side byte) (int, error) {
	switch side {
	case SideA:
		return 16, nil
	case SideB:
		return 332, nil
	case SideAlt:
		return 647, nil
	default:
		return 0, errs.Errorf(errs.InvalidSide, int(side))
	}
}

// InsertRW18 converts an RW18 side/track/sector/intraSectorOffset
// coordinate to a block and intra-block offset, then inserts src there.
// This is pure geometry conversion: RW18's data is already byte-oriented
// at the block-image layer, so no nibble encode or decode happens here.
// Grounded on BlockDiskImage.c's convertRW18SideTrackSectorToBlockAndOffset.
func (img *Image) InsertRW18(side byte, track, sector, intraSectorOffset int, src []byte) error {
	if track < 0 || track >= tracksPerSide {
		return errs.Errorf(errs.InvalidTrack, track)
	}
	if sector < 0 || sector >= rw18SectorsPerTrack {
		return errs.Errorf(errs.InvalidSector, sector)
	}

	startBlock, err := startBlockForSide(side)
	if err != nil {
		return err
	}

	sectorWithinSide := track*rw18SectorsPerTrack + sector
	blockWithinSide := sectorWithinSide / sectorsPerBlock
	block := startBlock + blockWithinSide
	intraBlockOffset := (sectorWithinSide%sectorsPerBlock)*BytesPerSector + intraSectorOffset

	return img.InsertBlock(block, intraBlockOffset, src)
}
