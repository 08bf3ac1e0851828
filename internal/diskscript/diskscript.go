// Package diskscript implements the CSV-driven disk-image build script:
// one row per chunk of object-file data to drop into the output image,
// addressed either by block or by RWTS16/RWTS16CP/RW18 disk geometry.
// Grounded on the original DiskImage.c's script engine.
package diskscript

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/adamgreen/snapncrackle/internal/binbuf"
	"github.com/adamgreen/snapncrackle/internal/errs"
)

// Kind identifies a script row's insertion geometry.
type Kind int

const (
	KindBlock Kind = iota
	KindRWTS16
	KindRWTS16CP
	KindRW18
)

// Insert describes one fully-resolved row, ready to hand to a Target.
type Insert struct {
	Kind Kind

	SourceOffset int
	Length       int

	// BLOCK
	Block            int
	IntraBlockOffset int

	// RWTS16 / RWTS16CP
	Track  int
	Sector int

	// RW18
	Side             byte
	IntraTrackOffset int
}

// Target receives resolved inserts. The nibble and blockimage packages
// each implement the subset of kinds they support, rejecting the rest
// with errs.InvalidInsertionType.
type Target interface {
	Insert(ins Insert, data []byte) error
}

// Engine runs a script file against a Target, tracking the running
// defaults ('*' expansion) that span script rows.
type Engine struct {
	target Target

	lastBlock  int
	lastLength int

	lastSide             byte
	lastTrack            int
	lastIntraTrackOffset int
}

// New returns an Engine that inserts into target.
func New(target Target) *Engine {
	return &Engine{target: target}
}

// RunFile parses and executes every row of the script at path, in order.
// A row that fails to execute is reported via errFn (line number,
// error) and otherwise skipped, mirroring the original's
// continue-past-bad-lines behavior.
func (e *Engine) RunFile(path string, errFn func(line int, err error)) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.FileOpen, err, path)
	}
	defer f.Close()
	return e.run(f, errFn)
}

func (e *Engine) run(r io.Reader, errFn func(line int, err error)) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if isComment(line) {
			continue
		}
		if err := e.runLine(line); err != nil {
			if errFn != nil {
				errFn(lineNumber, err)
			}
		}
	}
	return scanner.Err()
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func (e *Engine) runLine(line string) error {
	fields, err := parseCSVLine(line)
	if err != nil {
		return errs.Errorf(errs.InvalidArgument, err.Error())
	}
	fields = lo.Map(fields, func(f string, _ int) string {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && f[0] == '"' && f[len(f)-1] == '"' {
			f = f[1 : len(f)-1]
		}
		return f
	})
	if len(fields) < 1 || fields[0] == "" {
		return errs.Errorf(errs.InvalidArgument, "script line cannot be blank")
	}

	switch strings.ToLower(fields[0]) {
	case "block":
		return e.runBlock(fields)
	case "rwts16":
		return e.runRWTS16(fields)
	case "rwts16cp":
		return e.runRWTS16CP(fields)
	case "rw18":
		return e.runRW18(fields)
	default:
		return errs.Errorf(errs.InvalidInsertionType, fields[0])
	}
}

func parseCSVLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	// Script lines commonly pad a field with a space before a quoted
	// filename; encoding/csv only treats '"' as quote-opening when it is
	// the field's very first byte, so that space would otherwise make
	// the quote "bare" and fail the whole line. LazyQuotes instead takes
	// the field (space, quotes, and all) literally, leaving runLine to
	// trim the padding and strip the surrounding quotes.
	reader.LazyQuotes = true
	return reader.Read()
}

func isAsterisk(s string) bool { return s == "*" }

func parseUint(s string) (int, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, errs.Errorf(errs.InvalidArgument, s)
	}
	return int(v), nil
}

func parseWithDefault(s string, def int) (int, error) {
	if isAsterisk(s) {
		return def, nil
	}
	return parseUint(s)
}

func (e *Engine) runBlock(fields []string) error {
	if len(fields) < 5 || len(fields) > 6 {
		return errs.Errorf(errs.InvalidArgument,
			"BLOCK,objectFilename,objectStartOffset,insertionLength,block[,intraBlockOffset]")
	}

	obj, err := ReadObjectFile(fields[1])
	if err != nil {
		return err
	}
	sourceOffset, err := parseUint(fields[2])
	if err != nil {
		return err
	}
	length, err := parseWithDefault(fields[3], obj.Length)
	if err != nil {
		return err
	}

	ins := Insert{Kind: KindBlock, SourceOffset: sourceOffset, Length: length}
	if isAsterisk(fields[4]) {
		lastOffset := e.lastBlock*512 + e.lastLength
		ins.Block = lastOffset / 512
		ins.IntraBlockOffset = lastOffset % 512
	} else {
		block, err := parseUint(fields[4])
		if err != nil {
			return err
		}
		ins.Block = block
		if len(fields) > 5 {
			offset, err := parseUint(fields[5])
			if err != nil {
				return err
			}
			ins.IntraBlockOffset = offset
		}
	}

	if err := e.validateAndInsert(obj, ins); err != nil {
		return err
	}
	e.lastBlock, e.lastLength = ins.Block, ins.IntraBlockOffset+ins.Length
	return nil
}

func (e *Engine) runRWTS16(fields []string) error {
	if len(fields) != 6 {
		return errs.Errorf(errs.InvalidArgument,
			"RWTS16,objectFilename,objectStartOffset,insertionLength,track,sector")
	}
	obj, err := ReadObjectFile(fields[1])
	if err != nil {
		return err
	}
	sourceOffset, err := parseUint(fields[2])
	if err != nil {
		return err
	}
	length, err := parseWithDefault(fields[3], obj.Length)
	if err != nil {
		return err
	}
	track, err := parseUint(fields[4])
	if err != nil {
		return err
	}
	sector, err := parseUint(fields[5])
	if err != nil {
		return err
	}

	ins := Insert{
		Kind: KindRWTS16, SourceOffset: sourceOffset, Length: length,
		Track: track, Sector: sector,
	}
	return e.validateAndInsert(obj, ins)
}

func (e *Engine) runRWTS16CP(fields []string) error {
	if len(fields) != 3 {
		return errs.Errorf(errs.InvalidArgument, "RWTS16CP,track,sector")
	}
	track, err := parseUint(fields[1])
	if err != nil {
		return err
	}
	sector, err := parseUint(fields[2])
	if err != nil {
		return err
	}

	ins := Insert{Kind: KindRWTS16CP, Track: track, Sector: sector}
	return e.target.Insert(ins, nil)
}

func (e *Engine) runRW18(fields []string) error {
	if len(fields) < 7 || len(fields) > 8 {
		return errs.Errorf(errs.InvalidArgument,
			"RW18,objectFilename,objectStartOffset,insertionLength,side,track,offset[,imageTableAddress]")
	}
	obj, err := ReadObjectFile(fields[1])
	if err != nil {
		return err
	}
	sourceOffset, err := parseUint(fields[2])
	if err != nil {
		return err
	}
	length, err := parseWithDefault(fields[3], obj.Length)
	if err != nil {
		return err
	}
	side, err := parseWithDefault(fields[4], int(e.lastSide))
	if err != nil {
		return err
	}
	track, err := parseWithDefault(fields[5], e.lastTrack)
	if err != nil {
		return err
	}
	offset, err := parseWithDefault(fields[6], e.lastIntraTrackOffset)
	if err != nil {
		return err
	}

	ins := Insert{
		Kind: KindRW18, SourceOffset: sourceOffset, Length: length,
		Side: byte(side), Track: track, IntraTrackOffset: offset,
	}

	if err := e.validateAndInsert(obj, ins); err != nil {
		return err
	}
	e.lastSide, e.lastTrack, e.lastIntraTrackOffset = ins.Side, ins.Track, ins.IntraTrackOffset
	return nil
}

func (e *Engine) validateAndInsert(obj *ObjectFile, ins Insert) error {
	if ins.Kind != KindRWTS16CP {
		if ins.SourceOffset >= obj.Length {
			return errs.Errorf(errs.InvalidSourceOffset, ins.SourceOffset)
		}
		if ins.SourceOffset+ins.Length > len(obj.Data) {
			return errs.Errorf(errs.InvalidLength, ins.Length)
		}
	}
	return e.target.Insert(ins, obj.Data[ins.SourceOffset:ins.SourceOffset+ins.Length])
}

// ObjectFile is a script row's source data, already rounded up to the
// underlying arena's natural block granularity the way the original
// over-allocates its read buffer.
type ObjectFile struct {
	Data   []byte
	Length int
}

// ReadObjectFile loads path, sniffing a SAV or RW18 SAV header to
// determine the real payload length (a raw binary with no such header
// uses the whole file). Grounded on DiskImage.c's
// determineObjectSizeFromFileHeader.
func ReadObjectFile(path string) (*ObjectFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileOpen, err, filepath.Clean(path))
	}

	length := len(raw)
	body := raw

	if len(raw) >= 8 && hasSignature(raw, binbuf.SAVSignature) {
		length = int(le16(raw[6:8]))
		body = raw[8:]
	} else if len(raw) >= 12 && hasSignature(raw, binbuf.RW18SAVSignature) {
		length = int(le16(raw[10:12]))
		body = raw[12:]
	}

	rounded := roundUpToBlock(length)
	data := make([]byte, rounded)
	n := copy(data, body)
	if n < length {
		return nil, errs.Errorf(errs.FileGeneric, fmt.Sprintf("%s is shorter than its header claims", path))
	}
	return &ObjectFile{Data: data, Length: length}, nil
}

func hasSignature(raw []byte, sig [4]byte) bool {
	return raw[0] == sig[0] && raw[1] == sig[1] && raw[2] == sig[2] && raw[3] == sig[3]
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func roundUpToBlock(length int) int {
	const blockSize = 512
	return (length + blockSize - 1) &^ (blockSize - 1)
}
