package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/pkg/project"
)

// TreeOptions holds options for the tree command.
type TreeOptions struct {
	Format string // Output format: text, json
}

// NewTreeCommand creates the tree command.
func NewTreeCommand() *cobra.Command {
	opts := &TreeOptions{}
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Show the instance tree a project describes",
		Long: `Load the project at the given path and print the tree of instances it
describes: names, classes, and path bindings. Children print in name order.`,
		Example: `  # Show the tree of the project in the current directory
  grove tree

  # Output the project document as JSON
  grove tree --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runTree(cmd, opts, args[0])
			}
			return runTree(cmd, opts, ".")
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

func runTree(cmd *cobra.Command, opts *TreeOptions, path string) error {
	cfg := GetConfig(cmd.Context())
	format := opts.Format
	if format == "" {
		format = cfg.OutputFormat
	}

	proj, err := project.LoadFuzzy(path)
	if err != nil {
		return err
	}
	if proj == nil {
		return fmt.Errorf("no project file found at %s", path)
	}

	if format == "json" {
		encoded, err := json.MarshalIndent(proj, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	}

	printNode(cmd.OutOrStdout(), proj.Name, proj.Tree, 0)
	return nil
}

// printNode renders one node and recurses into its children in name order.
func printNode(w io.Writer, name string, node *project.ProjectNode, depth int) {
	indent := strings.Repeat("  ", depth)

	label := node.ClassName
	if label == "" {
		// Class comes from the content behind $path; this loader does not
		// resolve it.
		label = "?"
	}
	fmt.Fprintf(w, "%s%s [%s]", indent, name, label)
	if node.Path != "" {
		fmt.Fprintf(w, " <- %s", node.Path)
	}
	if len(node.Properties) > 0 {
		fmt.Fprintf(w, " (%d propert%s)", len(node.Properties), pluralY(len(node.Properties)))
	}
	fmt.Fprintln(w)

	for _, childName := range node.ChildNames() {
		printNode(w, childName, node.Children[childName], depth+1)
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
