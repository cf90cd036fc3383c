// Package snap persists the sparse grid to a compact binary snapshot.
//
// Layout before compression, all values little-endian int32:
// min.x, min.y, max.x, max.y, cell count, then x, y, state per cell in
// coordinate order. The block is snappy-compressed and prefixed with a
// 4-byte magic so a foreign file fails fast instead of decoding garbage.
package snap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/snappy"

	"sparse-ca/pkg/geom"
	"sparse-ca/pkg/grid"
)

var magic = [4]byte{'C', 'A', 'S', '1'}

// Ext is appended to snapshot file names that lack it.
const Ext = ".snapshot"

// Save serializes the grid's non-default cells and bounds to w.
func Save(w io.Writer, g *grid.Grid) error {
	cells := g.Cells()
	points := make([]geom.Point, 0, len(cells))
	for p := range cells {
		points = append(points, p)
	}
	// Coordinate order keeps byte output reproducible for identical grids.
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	var min, max geom.Point
	if bounds, ok := g.Bounds(); ok {
		min, max = bounds.Min, bounds.Max
	}

	buf := new(bytes.Buffer)
	writeInt32 := func(v int) {
		binary.Write(buf, binary.LittleEndian, int32(v))
	}
	writeInt32(min.X)
	writeInt32(min.Y)
	writeInt32(max.X)
	writeInt32(max.Y)
	writeInt32(len(points))
	for _, p := range points {
		writeInt32(p.X)
		writeInt32(p.Y)
		writeInt32(cells[p])
	}

	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if _, err := w.Write(snappy.Encode(nil, buf.Bytes())); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from r and replaces the grid contents via
// grid.Load, which also rebuilds the evaluation frontier so the first
// generation after a restore is correct.
func Load(r io.Reader, g *grid.Grid) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if len(raw) < len(magic) || !bytes.Equal(raw[:len(magic)], magic[:]) {
		return fmt.Errorf("snapshot: bad magic, not a snapshot file")
	}
	data, err := snappy.Decode(nil, raw[len(magic):])
	if err != nil {
		return fmt.Errorf("snapshot: decompress: %w", err)
	}

	rd := bytes.NewReader(data)
	readInt32 := func() (int, error) {
		var v int32
		err := binary.Read(rd, binary.LittleEndian, &v)
		return int(v), err
	}

	var header [5]int
	for i := range header {
		if header[i], err = readInt32(); err != nil {
			return fmt.Errorf("snapshot: truncated header: %w", err)
		}
	}
	min := geom.Pt(header[0], header[1])
	max := geom.Pt(header[2], header[3])
	count := header[4]
	if count < 0 {
		return fmt.Errorf("snapshot: invalid cell count %d", count)
	}

	cells := make(map[geom.Point]int, count)
	for i := 0; i < count; i++ {
		x, err := readInt32()
		if err != nil {
			return fmt.Errorf("snapshot: truncated at cell %d: %w", i, err)
		}
		y, err := readInt32()
		if err != nil {
			return fmt.Errorf("snapshot: truncated at cell %d: %w", i, err)
		}
		state, err := readInt32()
		if err != nil {
			return fmt.Errorf("snapshot: truncated at cell %d: %w", i, err)
		}
		cells[geom.Pt(x, y)] = state
	}
	if rd.Len() != 0 {
		return fmt.Errorf("snapshot: %d trailing bytes after %d cells", rd.Len(), count)
	}

	g.Load(cells, min, max)
	return nil
}

// SaveFile writes a snapshot to path, appending the canonical extension if
// missing.
func SaveFile(path string, g *grid.Grid) error {
	path = withExt(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := Save(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile restores a snapshot from path, trying the canonical extension if
// the bare path does not exist.
func LoadFile(path string, g *grid.Grid) error {
	f, err := os.Open(path)
	if err != nil && filepath.Ext(path) != Ext {
		f, err = os.Open(path + Ext)
	}
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()
	return Load(f, g)
}

func withExt(path string) string {
	if filepath.Ext(path) == Ext {
		return path
	}
	return path + Ext
}
