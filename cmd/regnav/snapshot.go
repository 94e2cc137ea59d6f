package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/pkg/backend/snapshot"
)

var (
	snapshotOut   string
	snapshotDepth int
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot [path] -o <file>",
		Short: "Capture a subtree into a snapshot file",
		Long: `The snapshot command copies a key, its values and all descendants into
a bbolt file that can later be browsed with --source snap:<file> or compared
with "regnav diff".

Example:
  regnav -s SOFTWARE.hive snapshot Microsoft -o before.snap`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(args)
		},
	}
	cmd.Flags().StringVarP(&snapshotOut, "output", "o", "", "Snapshot file to write")
	cmd.Flags().IntVar(&snapshotDepth, "depth", 0, "Maximum depth (0 = unlimited or config max_depth)")
	rootCmd.AddCommand(cmd)
}

func runSnapshot(args []string) error {
	if snapshotOut == "" {
		return errors.New("snapshot: --output is required")
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return withSession(currentSource(), func(s *session) error {
		root, err := s.open(path)
		if err != nil {
			return err
		}
		meta, err := snapshot.Capture(snapshotOut, root,
			snapshot.WithSource(s.label),
			snapshot.WithMaxDepth(effectiveDepth(snapshotDepth)),
		)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]any{
				"file":     snapshotOut,
				"root":     s.display(meta.Root),
				"keys":     meta.Keys,
				"values":   meta.Values,
				"captured": meta.Captured,
			})
		}
		printInfo("Captured %d keys and %d values below %s to %s\n", meta.Keys, meta.Values, s.display(meta.Root), snapshotOut)
		return nil
	})
}
