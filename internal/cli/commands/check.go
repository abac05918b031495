package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/grovekit/grove/pkg/project"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Format string // Output format: text, json
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Load and validate a project file",
		Long: `Locate and load the project at the given path and report every finding.

The path may name a project file directly or a directory containing
default.project.json. Warnings (such as children named with the reserved '$'
prefix) never fail the check; structural errors (such as a node with neither
$className nor $path) do.`,
		Example: `  # Check the project in the current directory
  grove check

  # Check a specific project file
  grove check game.project.json

  # Machine-readable output
  grove check --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return runCheck(cmd, opts, args[0])
			}
			return runCheck(cmd, opts, ".")
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

// CheckOutput is the JSON output for the check command.
type CheckOutput struct {
	Name          string               `json:"name"`
	FileLocation  string               `json:"file_location"`
	InstanceCount int                  `json:"instance_count"`
	ServePort     *uint16              `json:"serve_port,omitempty"`
	ServePlaceIDs []uint64             `json:"serve_place_ids,omitempty"`
	Diagnostics   []project.Diagnostic `json:"diagnostics"`
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, path string) error {
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

	errorCount := 0
	for _, d := range proj.Diagnostics {
		if d.Severity == project.SeverityError {
			errorCount++
		}
	}

	if format == "json" {
		out := CheckOutput{
			Name:          proj.Name,
			FileLocation:  proj.FileLocation,
			InstanceCount: proj.Tree.InstanceCount(),
			ServePort:     proj.ServePort,
			ServePlaceIDs: sortedPlaceIDs(proj.ServePlaceIDs),
			Diagnostics:   proj.Diagnostics,
		}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	} else {
		renderCheckText(cmd, proj)
	}

	if errorCount > 0 {
		return fmt.Errorf("%d error(s) found in %s", errorCount, proj.FileLocation)
	}
	return nil
}

func renderCheckText(cmd *cobra.Command, proj *project.Project) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Project: %s\n", proj.Name)
	fmt.Fprintf(w, "File:    %s\n", proj.FileLocation)
	fmt.Fprintf(w, "Tree:    %d instance(s)\n", proj.Tree.InstanceCount())
	if proj.ServePort != nil {
		fmt.Fprintf(w, "Port:    %d\n", *proj.ServePort)
	}
	if ids := sortedPlaceIDs(proj.ServePlaceIDs); len(ids) > 0 {
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("%d", id)
		}
		fmt.Fprintf(w, "Places:  %s\n", strings.Join(parts, ", "))
	}

	if len(proj.Diagnostics) == 0 {
		fmt.Fprintln(w, "\nNo issues found.")
		return
	}

	title := cases.Title(language.English)
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Severity", "Rule", "Instance", "Message"})
	for _, d := range proj.Diagnostics {
		tw.AppendRow(table.Row{
			title.String(d.Severity.String()),
			d.Rule,
			strings.Join(d.InstancePath, "/"),
			d.Message,
		})
	}
	tw.SetStyle(table.StyleLight)
	fmt.Fprintln(w)
	tw.Render()
}

func sortedPlaceIDs(set project.PlaceIDSet) []uint64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
