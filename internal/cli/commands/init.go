package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/pkg/project"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new grove project",
		Long: `Initialize a new grove project with a default project file and source layout.

This creates:
  - default.project.json describing the instance tree
  - src/ directories the project file points at
  - grove.yaml CLI configuration`,
		Example: `  # Initialize in the current directory
  grove init

  # Initialize in a new directory
  grove init my-game

  # Overwrite existing files
  grove init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	w := cmd.OutOrStdout()

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	projectPath := filepath.Join(dir, project.DefaultProjectFile)
	if _, err := os.Stat(projectPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", project.DefaultProjectFile)
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// The scaffold must load cleanly; a broken template is a bug here, not
	// a user error.
	if _, err := project.Load(projectPath); err != nil {
		return fmt.Errorf("scaffolded project failed to load: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		fmt.Fprintf(w, "  created %s\n", f)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Grove project initialized!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Edit default.project.json to describe your instance tree")
	fmt.Fprintln(w, "  2. Run 'grove check' to validate it")
	fmt.Fprintln(w, "  3. Run 'grove tree' to see the described instances")

	return nil
}
