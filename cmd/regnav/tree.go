package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/pkg/regkey"
)

var (
	treeDepth  int
	treeValues bool
)

type treeEntry struct {
	Path   string       `json:"path"`
	Depth  int          `json:"depth"`
	Values []valueEntry `json:"values,omitempty"`
}

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 = unlimited or config max_depth)")
	cmd.Flags().BoolVar(&treeValues, "values", false, "Show values too")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [path]",
		Short: "Display the subtree below a key",
		Long: `The tree command prints every descendant of a key in depth-first
pre-order, indented by depth.

Example:
  regnav -s SYSTEM.hive tree "ControlSet001\\Services" --depth 2
  regnav -s demo: tree --values`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
}

func runTree(args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return withSession(currentSource(), func(s *session) error {
		root, err := s.open(path)
		if err != nil {
			return err
		}
		var entries []treeEntry
		add := func(n *regkey.Node, rel string, depth int) error {
			e := treeEntry{Path: rel, Depth: depth}
			if treeValues {
				if e.Values, err = readValues(n); err != nil {
					return err
				}
			}
			entries = append(entries, e)
			return nil
		}
		if err := add(root, s.display(root.Name()), 0); err != nil {
			return err
		}
		sep := root.Separator()
		err = regkey.Walk(root, func(n *regkey.Node) error {
			rel := n.NodeName()
			return add(n, s.display(rel), strings.Count(rel, sep)+1)
		}, regkey.WithMaxDepth(effectiveDepth(treeDepth)))
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(map[string]any{"source": s.label, "tree": entries})
		}
		for _, e := range entries {
			indent := strings.Repeat("  ", e.Depth)
			name := e.Path
			if i := strings.LastIndex(name, s.sep); e.Depth > 0 && i >= 0 {
				name = name[i+len(s.sep):]
			}
			printInfo("%s%s\n", indent, name)
			for _, v := range e.Values {
				printInfo("%s  = %s (%s): %s\n", indent, v.Name, v.Type, v.Data)
			}
		}
		return nil
	})
}
