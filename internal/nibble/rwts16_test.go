package nibble

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Testable property: the nibble bytes at the RWTS16 sector's fixed
// address-field offset match the documented prolog/4-and-4/epilog layout.
func TestEncodeRWTS16SectorAddressField(t *testing.T) {
	var data [256]byte
	for i := range data {
		data[i] = byte(i)
	}
	encoded := EncodeRWTS16Sector(0, 3, 5, &data)
	require.Len(t, encoded, BytesPerSector)

	// Sector 5 (non-zero) gets a 5-byte lead-in sync, not sector 0's 48.
	require.Equal(t, byte(syncByte), encoded[0])
	require.Equal(t, byte(syncByte), encoded[4])

	prolog := encoded[5:8]
	require.Equal(t, []byte{addrPrologByte0, addrPrologByte1, 0x96}, prolog)

	volume, track, sector, checksum := byte(0), byte(3), byte(5), byte(0^3^5)
	require.Equal(t, encode4and4(volume), encoded[8:10])
	require.Equal(t, encode4and4(track), encoded[10:12])
	require.Equal(t, encode4and4(sector), encoded[12:14])
	require.Equal(t, encode4and4(checksum), encoded[14:16])
	require.Equal(t, []byte{addrEpilog0, addrEpilog1, addrEpilog2}, encoded[16:19])
}

func TestEncodeRWTS16SectorZeroHasLongLeadIn(t *testing.T) {
	var data [256]byte
	encoded := EncodeRWTS16Sector(0, 0, 0, &data)
	for i := 0; i < 48; i++ {
		require.Equal(t, byte(syncByte), encoded[i], "byte %d should still be lead-in sync", i)
	}
	require.Equal(t, []byte{addrPrologByte0, addrPrologByte1, 0x96}, encoded[48:51])
}

func TestEncodeRWTS16CPSectorCarriesMagicDataField(t *testing.T) {
	encoded := EncodeRWTS16CPSector(0, 1, 2)
	require.Len(t, encoded, BytesPerSector)
	// The data field's prolog is unchanged; only its content differs.
	dataFieldStart := 5 + 3 + 8 + 3 + 5
	require.Equal(t, []byte{addrPrologByte0, addrPrologByte1, 0xAD}, encoded[dataFieldStart:dataFieldStart+3])
}

func Test6and2RoundTripsThroughSixToEightTable(t *testing.T) {
	for v := byte(0); v < 64; v++ {
		encoded := encode6to8(v)
		decoded, err := decode6to8(encoded)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
	}
}

func TestDecode6to8RejectsIllegalByte(t *testing.T) {
	_, err := decode6to8(0x00)
	require.Error(t, err)
}
