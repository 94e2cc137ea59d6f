package snapshot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/regkeys/pkg/regkey"
)

// RootPath is the relative path Flatten reports for the root itself.
const RootPath = "."

// Flatten renders root and its subtree as sorted lines of the form
// "relpath\tname\ttype\tvalue". Keys without values produce a single line
// with empty name, type and value so empty keys still show up in diffs.
// Paths always use `\` so flattened trees from different backends compare.
func Flatten(root *regkey.Node, opts ...regkey.IterOption) ([]string, error) {
	var lines []string
	emit := func(n *regkey.Node, rel string) error {
		names, err := n.ValueNames()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			lines = append(lines, rel+"\t\t\t")
			return nil
		}
		for _, name := range names {
			v, err := n.Value(name)
			if err != nil {
				return err
			}
			lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%s", rel, name, v.Type, escape(v.Format())))
		}
		return nil
	}
	if err := emit(root, RootPath); err != nil {
		return nil, err
	}
	sep := root.Separator()
	err := regkey.Walk(root, func(n *regkey.Node) error {
		rel := n.NodeName()
		if sep != `\` {
			rel = strings.ReplaceAll(rel, sep, `\`)
		}
		return emit(n, rel)
	}, opts...)
	if err != nil {
		return nil, err
	}
	slices.Sort(lines)
	return lines, nil
}

var escaper = strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)

func escape(s string) string { return escaper.Replace(s) }
