package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regkeys/pkg/regkey"
)

type valueEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

const defaultValueLabel = "(Default)"

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "values [path]",
		Short: "List the values stored on a key",
		Long: `The values command lists every value of a key with its type and data.

Example:
  regnav -s demo: values "SOFTWARE\\Contoso\\Widget"
  regnav -s SYSTEM.hive values Select --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValues(args)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get <path> [value]",
		Short: "Print a single value",
		Long: `The get command prints one value of a key. Omit the value name (or
pass "") to read the key's default value.

Example:
  regnav -s demo: get "SYSTEM\\Select" Current`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	})
}

func displayValueName(name string) string {
	if name == regkey.DefaultValue {
		return defaultValueLabel
	}
	return name
}

func readValues(n *regkey.Node) ([]valueEntry, error) {
	names, err := n.ValueNames()
	if err != nil {
		return nil, err
	}
	out := make([]valueEntry, 0, len(names))
	for _, name := range names {
		v, err := n.Value(name)
		if err != nil {
			return nil, err
		}
		out = append(out, valueEntry{Name: displayValueName(name), Type: v.Type.String(), Data: v.Format()})
	}
	return out, nil
}

func runValues(args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	return withSession(currentSource(), func(s *session) error {
		n, err := s.open(path)
		if err != nil {
			return err
		}
		vals, err := readValues(n)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(map[string]any{
				"key":    s.display(n.Name()),
				"values": vals,
				"count":  len(vals),
			})
		}
		for _, v := range vals {
			printInfo("%-24s %-14s %s\n", v.Name, v.Type, v.Data)
		}
		printVerbose("\nTotal: %d values\n", len(vals))
		return nil
	})
}

func runGet(args []string) error {
	name := regkey.DefaultValue
	if len(args) > 1 {
		name = args[1]
	}
	return withSession(currentSource(), func(s *session) error {
		n, err := s.open(args[0])
		if err != nil {
			return err
		}
		v, err := n.Value(name)
		if err != nil {
			return fmt.Errorf("value %s: %w", displayValueName(name), err)
		}
		if jsonOut {
			return printJSON(valueEntry{Name: displayValueName(name), Type: v.Type.String(), Data: v.Format()})
		}
		printInfo("%s\n", v.Format())
		return nil
	})
}
