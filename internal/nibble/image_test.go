package nibble

import (
	"testing"

	"github.com/adamgreen/snapncrackle/internal/diskscript"
	"github.com/stretchr/testify/require"
)

func TestInsertRWTS16ViaTargetInterface(t *testing.T) {
	img := NewImage()
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}

	err := img.Insert(diskscript.Insert{Kind: diskscript.KindRWTS16, Track: 1, Sector: 2, Length: 256}, data)
	require.NoError(t, err)

	offset := 1*BytesPerTrack + 2*BytesPerSector
	require.Equal(t, byte(syncByte), img.data[offset])
}

func TestInsertRWTS16SpansMultipleSectors(t *testing.T) {
	img := NewImage()
	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i)
	}

	err := img.Insert(diskscript.Insert{Kind: diskscript.KindRWTS16, Track: 0, Sector: 15, Length: len(data)}, data)
	require.NoError(t, err)

	// Sector 15 fills track 0, overflow wraps into track 1 sector 0.
	offset := 1*BytesPerTrack + 0*BytesPerSector
	require.Equal(t, byte(syncByte), img.data[offset])
}

func TestInsertRWTS16CPViaTargetInterface(t *testing.T) {
	img := NewImage()
	err := img.Insert(diskscript.Insert{Kind: diskscript.KindRWTS16CP, Track: 0, Sector: 0}, nil)
	require.NoError(t, err)
}

func TestInsertRW18ViaTargetInterface(t *testing.T) {
	img := NewImage()
	data := make([]byte, 256)
	for i := range data {
		data[i] = 0x55
	}

	err := img.Insert(diskscript.Insert{Kind: diskscript.KindRW18, Side: BundleIDSideA, Track: 0, IntraTrackOffset: 0}, data)
	require.NoError(t, err)
}

func TestInsertRW18RunSpansMultipleTracks(t *testing.T) {
	img := NewImage()
	data := make([]byte, RW18DecodedTrackBytes+256)
	for i := range data {
		data[i] = 0xAA
	}

	err := img.Insert(diskscript.Insert{
		Kind: diskscript.KindRW18, Side: BundleIDSideA, Track: 0, IntraTrackOffset: 0, Length: len(data),
	}, data)
	require.NoError(t, err)

	encoded := img.data[BytesPerTrack : BytesPerTrack+RW18EncodedTrackBytes]
	decoded, err := ReadRW18Track(encoded, 1, BundleIDSideA)
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), decoded[0])
}

func TestInsertUnsupportedKindFails(t *testing.T) {
	img := NewImage()
	err := img.Insert(diskscript.Insert{Kind: diskscript.KindBlock}, nil)
	require.Error(t, err)
}

func TestCheckTrackSectorBounds(t *testing.T) {
	require.Error(t, checkTrackSector(-1, 0))
	require.Error(t, checkTrackSector(TracksPerDisk, 0))
	require.Error(t, checkTrackSector(0, -1))
	require.Error(t, checkTrackSector(0, SectorsPerTrack))
	require.NoError(t, checkTrackSector(0, 0))
}
