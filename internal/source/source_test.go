package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFileSplitsMixedLineEndings(t *testing.T) {
	f := NewFile("t.s", "one\ntwo\r\nthree\n\rfour")
	require.Equal(t, []string{"one", "two", "three", "four"}, f.Lines())
}

func TestFileSourceYieldsLinesThenEOF(t *testing.T) {
	f := NewFile("t.s", "one\ntwo\n")
	s := NewFileSource(f)

	line, num, ok := s.NextLine()
	require.True(t, ok)
	require.Equal(t, "one", line)
	require.Equal(t, 1, num)

	line, num, ok = s.NextLine()
	require.True(t, ok)
	require.Equal(t, "two", line)
	require.Equal(t, 2, num)

	_, _, ok = s.NextLine()
	require.False(t, ok)
	require.Equal(t, "t.s", s.Filename())
}

func TestDeriveRangeSharesLinesOverSubRange(t *testing.T) {
	f := NewFile("t.s", "a\nb\nc\nd\n")
	sub := f.DeriveRange(1, 3) // "b", "c"

	line, num, ok := sub.nextLine()
	require.True(t, ok)
	require.Equal(t, "b", line)
	require.Equal(t, 2, num)

	line, num, ok = sub.nextLine()
	require.True(t, ok)
	require.Equal(t, "c", line)
	require.Equal(t, 3, num)

	_, _, ok = sub.nextLine()
	require.False(t, ok)
}

func TestResetRewindsDerivedRange(t *testing.T) {
	f := NewFile("t.s", "a\nb\nc\n")
	sub := f.DeriveRange(0, 2) // "a", "b"

	sub.nextLine()
	sub.nextLine()
	_, _, ok := sub.nextLine()
	require.False(t, ok)

	sub.Reset()
	line, _, ok := sub.nextLine()
	require.True(t, ok)
	require.Equal(t, "a", line)
}

func TestLupSourceRepeatsRangeThenEnds(t *testing.T) {
	f := NewFile("t.s", "x\ny\n")
	lup := NewLupSource(f, 2)

	var got []string
	for {
		line, _, ok := lup.NextLine()
		if !ok {
			break
		}
		got = append(got, line)
	}
	require.Equal(t, []string{"x", "y", "x", "y"}, got)
}

func TestLupSourceZeroIterationsYieldsNothing(t *testing.T) {
	f := NewFile("t.s", "x\n")
	lup := NewLupSource(f, 0)
	_, _, ok := lup.NextLine()
	require.False(t, ok)
}

func TestStackNextLineRetriesOnceAfterPop(t *testing.T) {
	s := NewStack()
	outer := NewFileSource(NewFile("outer.s", "outer-line\n"))
	inner := NewFileSource(NewFile("inner.s", "inner-line\n"))
	s.Push(outer)
	s.Push(inner)

	line, _, name, ok := s.NextLine()
	require.True(t, ok)
	require.Equal(t, "inner-line", line)
	require.Equal(t, "inner.s", name)

	// inner.s is now exhausted: NextLine should pop it and retry once,
	// surfacing outer.s's first line instead of reporting EOF.
	line, _, name, ok = s.NextLine()
	require.True(t, ok)
	require.Equal(t, "outer-line", line)
	require.Equal(t, "outer.s", name)
	require.Equal(t, 1, s.Depth())
}

func TestStackNextLineDoesNotCascadeThroughTwoEmptySources(t *testing.T) {
	s := NewStack()
	outer := NewFileSource(NewFile("outer.s", "")) // already empty
	inner := NewFileSource(NewFile("inner.s", "")) // already empty
	s.Push(outer)
	s.Push(inner)

	// Only one retry is attempted: popping inner.s lands on outer.s,
	// which is also exhausted, so this call reports EOF without
	// popping outer.s too.
	_, _, _, ok := s.NextLine()
	require.False(t, ok)
	require.Equal(t, 1, s.Depth())
}

func TestStackEmptyReportsEOF(t *testing.T) {
	s := NewStack()
	_, _, _, ok := s.NextLine()
	require.False(t, ok)
}

func TestStackTopFileFindsUnderlyingFileThroughLup(t *testing.T) {
	s := NewStack()
	f := NewFile("t.s", "a\nb\n")
	s.Push(NewLupSource(f, 1))

	got, ok := s.TopFile()
	require.True(t, ok)
	require.Same(t, f, got)
}

func TestStackPopOnEmptyIsNoOp(t *testing.T) {
	s := NewStack()
	require.NotPanics(t, func() { s.Pop() })
	require.Equal(t, 0, s.Depth())
}
