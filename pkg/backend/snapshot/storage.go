// Package snapshot persists a subtree of any backend into a bbolt file and
// serves it back as a read-only types.Backend.
//
// Layout: the "meta" bucket records where the capture came from; the "tree"
// bucket is the captured root key. Inside a key bucket, subkeys are nested
// buckets keyed 'k'+name and values are JSON records keyed 'v'+name.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/joshuapare/regkeys/pkg/types"
)

// Bucket names
var (
	MetaBucket = []byte("meta")
	TreeBucket = []byte("tree")
)

// Meta keys
var (
	MetaVersion   = []byte("version")
	MetaSource    = []byte("source")
	MetaRoot      = []byte("root")
	MetaSeparator = []byte("separator")
	MetaCaptured  = []byte("captured")
	MetaKeys      = []byte("keys")
	MetaValues    = []byte("values")
)

const (
	formatVersion = "1"
	keyPrefix     = 'k'
	valuePrefix   = 'v'
)

// Meta describes a snapshot.
type Meta struct {
	Source    string
	Root      string
	Separator string
	Captured  time.Time
	Keys      int
	Values    int
}

func subkeyID(name string) []byte { return append([]byte{keyPrefix}, name...) }
func valueID(name string) []byte  { return append([]byte{valuePrefix}, name...) }

// record is the stored form of a types.Value.
type record struct {
	Type uint32   `json:"t"`
	Str  string   `json:"s,omitempty"`
	Strs []string `json:"m,omitempty"`
	Num  uint64   `json:"n,omitempty"`
	Raw  []byte   `json:"b,omitempty"`
}

func encodeValue(v types.Value) ([]byte, error) {
	r := record{Type: uint32(v.Type)}
	switch {
	case v.IsString():
		r.Str, _ = v.AsString()
	case v.Type == types.REG_MULTI_SZ:
		r.Strs, _ = v.AsStrings()
	case v.Type == types.REG_QWORD:
		r.Num, _ = v.AsUint64()
	case v.Type == types.REG_DWORD, v.Type == types.REG_DWORD_BE:
		n, _ := v.AsUint32()
		r.Num = uint64(n)
	default:
		r.Raw, _ = v.AsBytes()
	}
	return json.Marshal(r)
}

func decodeValue(b []byte) (types.Value, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return types.Value{}, &types.Error{Kind: types.ErrKindCorrupt, Msg: "snapshot: value record", Err: err}
	}
	t := types.RegType(r.Type)
	switch t {
	case types.REG_SZ:
		return types.StringValue(r.Str), nil
	case types.REG_EXPAND_SZ:
		return types.ExpandStringValue(r.Str), nil
	case types.REG_LINK:
		return types.LinkValue(r.Str), nil
	case types.REG_MULTI_SZ:
		return types.MultiStringValue(r.Strs), nil
	case types.REG_DWORD:
		return types.DWORDValue(uint32(r.Num)), nil
	case types.REG_DWORD_BE:
		return types.DWORDBigEndianValue(uint32(r.Num)), nil
	case types.REG_QWORD:
		return types.QWORDValue(r.Num), nil
	default:
		return types.RawValue(t, r.Raw), nil
	}
}

func putMeta(tx *bolt.Tx, m Meta) error {
	b, err := tx.CreateBucketIfNotExists(MetaBucket)
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", MetaBucket, err)
	}
	captured, err := m.Captured.MarshalBinary()
	if err != nil {
		return err
	}
	for _, kv := range []struct{ k, v []byte }{
		{MetaVersion, []byte(formatVersion)},
		{MetaSource, []byte(m.Source)},
		{MetaRoot, []byte(m.Root)},
		{MetaSeparator, []byte(m.Separator)},
		{MetaCaptured, captured},
		{MetaKeys, binary.BigEndian.AppendUint32(nil, uint32(m.Keys))},
		{MetaValues, binary.BigEndian.AppendUint32(nil, uint32(m.Values))},
	} {
		if err := b.Put(kv.k, kv.v); err != nil {
			return err
		}
	}
	return nil
}

func readMeta(tx *bolt.Tx) (Meta, error) {
	b := tx.Bucket(MetaBucket)
	if b == nil || tx.Bucket(TreeBucket) == nil {
		return Meta{}, &types.Error{Kind: types.ErrKindFormat, Msg: "snapshot: not a snapshot file"}
	}
	if v := string(b.Get(MetaVersion)); v != formatVersion {
		return Meta{}, &types.Error{Kind: types.ErrKindUnsupported, Msg: fmt.Sprintf("snapshot: format version %q", v)}
	}
	m := Meta{
		Source:    string(b.Get(MetaSource)),
		Root:      string(b.Get(MetaRoot)),
		Separator: string(b.Get(MetaSeparator)),
	}
	if err := m.Captured.UnmarshalBinary(b.Get(MetaCaptured)); err != nil {
		return Meta{}, &types.Error{Kind: types.ErrKindCorrupt, Msg: "snapshot: capture time", Err: err}
	}
	if v := b.Get(MetaKeys); len(v) == 4 {
		m.Keys = int(binary.BigEndian.Uint32(v))
	}
	if v := b.Get(MetaValues); len(v) == 4 {
		m.Values = int(binary.BigEndian.Uint32(v))
	}
	if m.Separator == "" {
		m.Separator = `\`
	}
	return m, nil
}
