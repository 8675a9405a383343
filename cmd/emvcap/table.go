package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gregLibert/emvcap/pkg/dict"
	"github.com/gregLibert/emvcap/pkg/emv"
	"github.com/gregLibert/emvcap/pkg/tlv"
)

// printTree renders a decoded TLV tree as an aligned Tag / Name / Value
// table. Constructed nodes recurse with their children indented under
// them; unknown tags render as plain hex.
func printTree(w io.Writer, title string, tree tlv.Tree, redact bool) {
	if title != "" {
		fmt.Fprintf(w, "%s\n", title)
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Tag\tName\tValue\n")
	writeTreeRows(tw, tree, 0, redact)
	tw.Flush()
	fmt.Fprintln(w)
}

func writeTreeRows(w io.Writer, tree tlv.Tree, depth int, redact bool) {
	indent := strings.Repeat("  ", depth)

	for _, node := range tree {
		name, value := describeNode(node, redact)
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", indent, node.TagHex(), name, value)

		if node.Constructed {
			writeTreeRows(w, node.Children, depth+1, redact)
		}
	}
}

func describeNode(node tlv.Node, redact bool) (name, value string) {
	entry, known := dict.Lookup(node.Tag)
	if known {
		name = entry.Name
	}

	if node.Constructed {
		return name, ""
	}

	if known {
		return name, dict.Render(entry, node.Value, redact)
	}
	return name, dict.Render(dict.Tag{Type: dict.TypeBinary}, node.Value, redact)
}

// printAppTable renders the directory entries the way the verifypin and
// cap commands index them.
func printAppTable(w io.Writer, apps []emv.ApplicationTemplate) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tLabel\tADF\n")
	for i, app := range apps {
		fmt.Fprintf(tw, "%d\t%s\t%X\n", i, app.ApplicationLabel, app.AID)
	}
	tw.Flush()
}
