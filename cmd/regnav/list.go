package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/pkg/regkey"
)

var listDepth int

type keyEntry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Subkeys int    `json:"subkeys"`
}

type listMode int

const (
	listChildren listMode = iota
	listLeafs
	listBranches
)

func init() {
	rootCmd.AddCommand(newListCmd("ls [path]", "List the direct subkeys of a key", listChildren))

	leafs := newListCmd("leafs [path]", "List descendant keys without subkeys", listLeafs)
	leafs.Flags().IntVar(&listDepth, "depth", 0, "Maximum depth (0 = unlimited or config max_depth)")
	rootCmd.AddCommand(leafs)

	branches := newListCmd("branches [path]", "List descendant keys that have subkeys", listBranches)
	branches.Flags().IntVar(&listDepth, "depth", 0, "Maximum depth (0 = unlimited or config max_depth)")
	rootCmd.AddCommand(branches)
}

func newListCmd(use, short string, mode listMode) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Example:
  regnav -s SYSTEM.hive ls "ControlSet001\\Services"
  regnav -s demo: leafs SOFTWARE --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(mode, args)
		},
	}
}

func effectiveDepth(flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.MaxDepth
}

func runList(mode listMode, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return withSession(currentSource(), func(s *session) error {
		root, err := s.open(path)
		if err != nil {
			return err
		}
		var it *regkey.Iter
		switch mode {
		case listLeafs:
			it = root.Leafs(regkey.WithMaxDepth(effectiveDepth(listDepth)))
		case listBranches:
			it = root.Branches(regkey.WithMaxDepth(effectiveDepth(listDepth)))
		default:
			it = root.Children()
		}

		var entries []keyEntry
		for n := range it.Seq() {
			count, err := n.SubkeyCount()
			if err != nil {
				return err
			}
			entries = append(entries, keyEntry{
				Name:    s.display(n.NodeName()),
				Path:    s.display(n.Name()),
				Subkeys: count,
			})
		}
		if err := it.Err(); err != nil {
			return err
		}

		if jsonOut {
			if entries == nil {
				entries = []keyEntry{}
			}
			return printJSON(map[string]any{
				"source": s.label,
				"root":   s.display(root.Name()),
				"keys":   entries,
				"count":  len(entries),
			})
		}
		for _, e := range entries {
			printInfo("%s\n", e.Name)
		}
		printVerbose("\nTotal: %d keys\n", len(entries))
		return nil
	})
}
