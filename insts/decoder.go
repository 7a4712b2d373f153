package insts

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder decodes trace lines into micro-ops.
//
// A line has the form
//
//	OP dst [src1 [src2 [src3]]]
//
// where registers are decimal ids, optionally prefixed with "r". Missing
// sources are RegNone. Text after '#' is a comment.
type Decoder struct{}

// NewDecoder creates a new trace decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// errBlankLine is returned for lines holding no micro-op.
var errBlankLine = fmt.Errorf("blank line")

// Decode decodes one trace line.
func (d *Decoder) Decode(line string) (Uop, error) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Uop{}, errBlankLine
	}

	if len(fields) > 5 {
		return Uop{}, fmt.Errorf("too many operands: %d", len(fields)-1)
	}

	op, err := ParseOp(fields[0])
	if err != nil {
		return Uop{}, err
	}

	var regs [4]Reg
	for i, f := range fields[1:] {
		r, err := d.parseReg(f)
		if err != nil {
			return Uop{}, err
		}
		regs[i] = r
	}

	return Uop{
		Op:   op,
		Dst:  regs[0],
		Src1: regs[1],
		Src2: regs[2],
		Src3: regs[3],
	}, nil
}

func (d *Decoder) parseReg(field string) (Reg, error) {
	s := strings.TrimPrefix(strings.ToLower(field), "r")
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return RegNone, fmt.Errorf("invalid register %q", field)
	}
	return Reg(v), nil
}

// TraceReader streams micro-ops from a text trace.
type TraceReader struct {
	scanner *bufio.Scanner
	decoder *Decoder
	line    int
}

// NewTraceReader creates a TraceReader over r.
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{
		scanner: bufio.NewScanner(r),
		decoder: NewDecoder(),
	}
}

// Next returns the next micro-op. It returns io.EOF once the trace is
// exhausted.
func (t *TraceReader) Next() (Uop, error) {
	for t.scanner.Scan() {
		t.line++
		uop, err := t.decoder.Decode(t.scanner.Text())
		if err == errBlankLine {
			continue
		}
		if err != nil {
			return Uop{}, fmt.Errorf("line %d: %w", t.line, err)
		}
		return uop, nil
	}

	if err := t.scanner.Err(); err != nil {
		return Uop{}, fmt.Errorf("failed to read trace: %w", err)
	}

	return Uop{}, io.EOF
}

// Line returns the number of lines consumed so far.
func (t *TraceReader) Line() int {
	return t.line
}
