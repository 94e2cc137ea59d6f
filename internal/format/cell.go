package format

import "fmt"

// Cell is one allocated cell. Data excludes the 4-byte size prefix.
type Cell struct {
	Offset uint32
	Size   int
	Data   []byte
}

// ReadCell returns the allocated cell at off, an offset relative to the first
// hive bin. Cell sizes are stored as int32: negative means allocated.
func ReadCell(hive []byte, off uint32) (Cell, error) {
	if off == InvalidOffset {
		return Cell{}, fmt.Errorf("cell: invalid offset: %w", ErrTruncated)
	}
	abs := HeaderSize + int(off)
	raw, ok := u32(hive, abs)
	if !ok {
		return Cell{}, fmt.Errorf("cell 0x%X: %w", off, ErrTruncated)
	}
	size := int(int32(raw))
	if size >= 0 {
		return Cell{}, fmt.Errorf("cell 0x%X: %w", off, ErrFreeCell)
	}
	size = -size
	if size < CellHeaderSize {
		return Cell{}, fmt.Errorf("cell 0x%X: size %d: %w", off, size, ErrSanityLimit)
	}
	data, ok := Slice(hive, abs+CellHeaderSize, size-CellHeaderSize)
	if !ok {
		return Cell{}, fmt.Errorf("cell 0x%X: size %d: %w", off, size, ErrTruncated)
	}
	return Cell{Offset: off, Size: size, Data: data}, nil
}
