package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorfFormatsPattern(t *testing.T) {
	err := Errorf(InvalidTrack, 99)
	require.EqualError(t, err, "invalid track: 99")
}

func TestIsMatchesOriginatingPattern(t *testing.T) {
	err := Errorf(InvalidSector, 20)
	require.True(t, Is(err, InvalidSector))
	require.False(t, Is(err, InvalidTrack))
}

func TestHasDetectsAnyCuratedError(t *testing.T) {
	require.True(t, Has(Errorf(OutOfMemory)))
	require.False(t, Has(errors.New("plain error")))
}

func TestIsAnyMatchesOneOfSeveralPatterns(t *testing.T) {
	err := Errorf(BadTrack, "bad checksum")
	require.True(t, IsAny(err, InvalidTrack, BadTrack))
	require.False(t, IsAny(err, InvalidTrack, InvalidSector))
}

func TestWrapJoinsMessages(t *testing.T) {
	underlying := errors.New("permission denied")
	err := Wrap(FileOpen, underlying, "foo.sav")
	require.EqualError(t, err, "unable to open file 'foo.sav': permission denied")
	require.Equal(t, underlying, errors.Unwrap(err))
}

func TestWrapDedupsRepeatedSuffix(t *testing.T) {
	underlying := errors.New("same message")
	err := Wrap(FileGeneric, underlying, "same message")
	require.EqualError(t, err, "file error: same message")
}

func TestIsTraversesWrapChain(t *testing.T) {
	err := Wrap(FileOpen, errors.New("disk full"), "bar.sav")
	require.True(t, Is(err, FileOpen))
}
