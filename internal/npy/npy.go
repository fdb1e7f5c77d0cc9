// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package npy reads and writes float64 matrices in the NumPy .npy v1.0
// format, so a dump loads with numpy.load.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	magic     = "\x93NUMPY"
	alignment = 64
	// magic + version (2) + header length (2)
	preambleLen = len(magic) + 4
)

// ErrRagged is returned when matrix rows differ in length.
var ErrRagged = errors.New("rows have different lengths")

// Shape returns the array shape Write would record for m: (0,) for no
// rows, (rows, cols) otherwise.
func Shape(m [][]float64) ([]int, error) {
	if len(m) == 0 {
		return []int{0}, nil
	}
	cols := len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, row 0 has %d: %w", i, len(row), cols, ErrRagged)
		}
	}
	return []int{len(m), cols}, nil
}

// Write encodes m as a little-endian float64 C-order array.
func Write(w io.Writer, m [][]float64) error {
	shape, err := Shape(m)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header(shape)); err != nil {
		return fmt.Errorf("writing npy header: %w", err)
	}

	var buf [8]byte
	for _, row := range m {
		for _, v := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("writing npy data: %w", err)
			}
		}
	}
	return bw.Flush()
}

// header builds the magic, version, and padded dict for shape.
func header(shape []int) []byte {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	dict := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shapeStr)

	// Pad with spaces so the data starts on a 64-byte boundary; the dict
	// ends with a newline.
	total := preambleLen + len(dict) + 1
	if rem := total % alignment; rem != 0 {
		dict += strings.Repeat(" ", alignment-rem)
	}
	dict += "\n"

	var b bytes.Buffer
	b.WriteString(magic)
	b.WriteByte(1)
	b.WriteByte(0)
	var hl [2]byte
	binary.LittleEndian.PutUint16(hl[:], uint16(len(dict)))
	b.Write(hl[:])
	b.WriteString(dict)
	return b.Bytes()
}

var (
	descrPattern = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	orderPattern = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapePattern = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// Read decodes a v1.0 '<f8' C-order array written by Write and returns its
// shape and values in row-major order.
func Read(r io.Reader) ([]int, []float64, error) {
	pre := make([]byte, preambleLen)
	if _, err := io.ReadFull(r, pre); err != nil {
		return nil, nil, fmt.Errorf("reading npy preamble: %w", err)
	}
	if string(pre[:len(magic)]) != magic {
		return nil, nil, fmt.Errorf("not an npy file")
	}
	if pre[len(magic)] != 1 {
		return nil, nil, fmt.Errorf("unsupported npy version %d.%d", pre[len(magic)], pre[len(magic)+1])
	}

	hlen := binary.LittleEndian.Uint16(pre[len(magic)+2:])
	hdr := make([]byte, hlen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, nil, fmt.Errorf("reading npy header: %w", err)
	}

	if m := descrPattern.FindSubmatch(hdr); m == nil || string(m[1]) != "<f8" {
		return nil, nil, fmt.Errorf("unsupported dtype in header %q", hdr)
	}
	if m := orderPattern.FindSubmatch(hdr); m == nil || string(m[1]) != "False" {
		return nil, nil, fmt.Errorf("fortran-order arrays are not supported")
	}
	m := shapePattern.FindSubmatch(hdr)
	if m == nil {
		return nil, nil, fmt.Errorf("missing shape in header %q", hdr)
	}

	var shape []int
	count := 1
	for _, part := range strings.Split(string(m[1]), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, nil, fmt.Errorf("bad shape dimension %q: %w", part, err)
		}
		shape = append(shape, d)
		count *= d
	}

	data := make([]float64, count)
	var buf [8]byte
	br := bufio.NewReader(r)
	for i := range data {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return nil, nil, fmt.Errorf("reading npy data at value %d: %w", i, err)
		}
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
	}
	return shape, data, nil
}
