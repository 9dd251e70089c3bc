package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/peteraglen/restconsumer"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the members of the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeTree(cmd.OutOrStdout(), cfg.API)
	},
}

func writeTree(out io.Writer, root *restconsumer.Descriptor) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	walkTree(w, root, "", 0)
	return w.Flush()
}

func walkTree(w io.Writer, d *restconsumer.Descriptor, path string, depth int) {
	names := make([]string, 0, len(d.Children))
	for name := range d.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := d.Children[name]
		childPath := path + child.Path

		member := name
		if p, ok := child.Placeholder(); ok {
			member = name + ":<" + p + ">"
		}

		verbs := make([]string, len(child.Verbs))
		for i, verb := range child.Verbs {
			verbs[i] = string(verb)
		}

		fmt.Fprintf(w, "%s%s\t%s\t%s\n", strings.Repeat("  ", depth), member, childPath, strings.Join(verbs, ","))
		walkTree(w, child, childPath, depth+1)
	}
}
