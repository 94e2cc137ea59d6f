package snapshot

import (
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/joshuapare/regkeys/pkg/regkey"
)

type captureOptions struct {
	source   string
	maxDepth int
	now      func() time.Time
}

// CaptureOption configures Capture.
type CaptureOption func(*captureOptions)

// WithSource records a human-readable origin (e.g. "hive:SYSTEM").
func WithSource(source string) CaptureOption {
	return func(o *captureOptions) { o.source = source }
}

// WithMaxDepth limits how many levels below root are captured.
func WithMaxDepth(depth int) CaptureOption {
	return func(o *captureOptions) { o.maxDepth = depth }
}

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) CaptureOption {
	return func(o *captureOptions) { o.now = now }
}

// closeDB is swapped in tests to simulate a failing flush.
var closeDB = (*bolt.DB).Close

// Capture writes root, its values and every descendant reachable within the
// depth limit to a new snapshot at path, replacing any existing file.
func Capture(path string, root *regkey.Node, opts ...CaptureOption) (_ Meta, err error) {
	o := captureOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Meta{}, fmt.Errorf("snapshot: replace %s: %w", path, err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return Meta{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := closeDB(db); cerr != nil && err == nil {
			err = fmt.Errorf("snapshot: close %s: %w", path, cerr)
		}
	}()

	meta := Meta{
		Source:    o.source,
		Root:      root.Name(),
		Separator: root.Separator(),
		Captured:  o.now().UTC(),
	}
	err = db.Update(func(tx *bolt.Tx) error {
		tree, err := tx.CreateBucket(TreeBucket)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", TreeBucket, err)
		}
		buckets := map[*regkey.Node]*bolt.Bucket{root: tree}
		if meta.Values, err = putValues(tree, root); err != nil {
			return err
		}
		return regkey.Walk(root, func(n *regkey.Node) error {
			parent, err := n.Parent()
			if err != nil {
				return err
			}
			pb, ok := buckets[parent]
			if !ok {
				return fmt.Errorf("snapshot: parent of %s not captured", n.Name())
			}
			b, err := pb.CreateBucket(subkeyID(n.BaseName()))
			if err != nil {
				return fmt.Errorf("snapshot: key %s: %w", n.Name(), err)
			}
			buckets[n] = b
			meta.Keys++
			count, err := putValues(b, n)
			meta.Values += count
			return err
		}, regkey.WithMaxDepth(o.maxDepth))
	})
	if err != nil {
		return Meta{}, err
	}
	if err := db.Update(func(tx *bolt.Tx) error { return putMeta(tx, meta) }); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

func putValues(b *bolt.Bucket, n *regkey.Node) (int, error) {
	names, err := n.ValueNames()
	if err != nil {
		return 0, err
	}
	for _, name := range names {
		v, err := n.Value(name)
		if err != nil {
			return 0, err
		}
		enc, err := encodeValue(v)
		if err != nil {
			return 0, err
		}
		if err := b.Put(valueID(name), enc); err != nil {
			return 0, fmt.Errorf("snapshot: value %s[%q]: %w", n.Name(), name, err)
		}
	}
	return len(names), nil
}
