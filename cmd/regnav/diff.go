package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/internal/snapdiff"
	"github.com/joshuapare/regkeys/pkg/backend/snapshot"
)

var diffContext bool

type diffChange struct {
	Op   string `json:"op"`
	Line string `json:"line"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "diff <from-source> <to-source> [path]",
		Short: "Compare the same subtree in two sources",
		Long: `The diff command flattens a subtree from each source into
"path<TAB>name<TAB>type<TAB>data" lines and prints the lines that differ.

Example:
  regnav diff snap:before.snap hive:SOFTWARE Microsoft
  regnav diff demo: snap:demo.snap --context`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args)
		},
	}
	cmd.Flags().BoolVar(&diffContext, "context", false, "Include unchanged lines")
	rootCmd.AddCommand(cmd)
}

func flattenSource(src, path string) ([]string, error) {
	var lines []string
	err := withSession(src, func(s *session) error {
		root, err := s.open(path)
		if err != nil {
			return err
		}
		lines, err = snapshot.Flatten(root)
		return err
	})
	return lines, err
}

func runDiff(args []string) error {
	var path string
	if len(args) > 2 {
		path = args[2]
	}
	from, err := flattenSource(args[0], path)
	if err != nil {
		return err
	}
	to, err := flattenSource(args[1], path)
	if err != nil {
		return err
	}
	r := snapdiff.Lines(from, to)

	if jsonOut {
		changes := []diffChange{}
		for _, c := range r.Changes {
			switch c.Op {
			case snapdiff.Added:
				changes = append(changes, diffChange{Op: "added", Line: c.Line})
			case snapdiff.Removed:
				changes = append(changes, diffChange{Op: "removed", Line: c.Line})
			}
		}
		return printJSON(map[string]any{
			"from":    args[0],
			"to":      args[1],
			"added":   r.Added,
			"removed": r.Removed,
			"changes": changes,
		})
	}
	if r.Empty() {
		printInfo("No differences\n")
		return nil
	}
	printInfo("%s", r.Unified(args[0], args[1], diffContext))
	printVerbose("\n%s\n", r.Summary())
	return nil
}
