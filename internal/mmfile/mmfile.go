// Package mmfile maps hive files into memory read-only.
package mmfile

import "errors"

// ErrClosed is returned when a mapping is released twice.
var ErrClosed = errors.New("mmfile: mapping already released")

// Mapping is a read-only view of a file's contents. Data must not be used
// after Close.
type Mapping struct {
	Data    []byte
	release func() error
	closed  bool
}

// Close releases the mapping. A second call reports ErrClosed.
func (m *Mapping) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	data := m.Data
	m.Data = nil
	if m.release == nil || data == nil {
		return nil
	}
	return m.release()
}

func fromBytes(data []byte) *Mapping {
	return &Mapping{Data: data}
}
