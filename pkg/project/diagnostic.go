package project

import (
	"fmt"
	"strconv"
	"strings"
)

// Severity indicates the importance of a project diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a structural problem the sync engine cannot
	// work around.
	SeverityError Severity = iota
	// SeverityWarning indicates a condition that should be reviewed but
	// does not block a load.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its string form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON decodes the severity from its string form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	text, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("severity: %w", err)
	}
	parsed, ok := ParseSeverity(text)
	if !ok {
		return fmt.Errorf("severity: unknown value %q", text)
	}
	*s = parsed
	return nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// Diagnostic rule identifiers.
const (
	// RuleReservedName flags a child instance named with the reserved `$`
	// prefix.
	RuleReservedName = "reserved-name"
	// RuleMissingClass flags a node with neither $className nor $path, so
	// no class can be resolved for it.
	RuleMissingClass = "missing-class"
	// RuleClassPathConflict flags an explicit $className other than Folder
	// on a path-bound node. Whether the two agree depends on the content
	// behind the path, which this package does not inspect, so the
	// condition is recorded rather than enforced.
	RuleClassPathConflict = "class-path-conflict"
)

// Diagnostic is one validation finding against a loaded project. Diagnostics
// are returned as values so the caller decides how to present them; nothing
// in this package logs.
type Diagnostic struct {
	Rule         string   `json:"rule"`
	Severity     Severity `json:"severity"`
	InstancePath []string `json:"instance_path,omitempty"`
	Message      string   `json:"message"`
}

// String formats the diagnostic as "severity: message (at root/Child/...)".
func (d Diagnostic) String() string {
	if len(d.InstancePath) == 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", d.Severity, d.Message, strings.Join(d.InstancePath, "/"))
}

// Validate runs every structural check over the project tree and returns
// the findings. It never mutates the tree and always inspects every node.
// Load attaches the result to Project.Diagnostics, but callers may re-run
// it at any time.
func (p *Project) Validate() []Diagnostic {
	root := []string{p.Name}
	var diags []Diagnostic
	diags = append(diags, p.Tree.validateReservedNames(root)...)
	diags = append(diags, validateClasses(p.Tree, root)...)
	return diags
}

// validateClasses checks that every node can resolve a class and flags
// explicit classes that may disagree with a path-sourced one. A plain
// Folder is always compatible with path content.
func validateClasses(n *ProjectNode, ancestry []string) []Diagnostic {
	var diags []Diagnostic

	switch {
	case n.ClassName == "" && n.Path == "":
		diags = append(diags, Diagnostic{
			Rule:         RuleMissingClass,
			Severity:     SeverityError,
			InstancePath: ancestry,
			Message:      "node needs either $className or $path to resolve a class",
		})
	case n.ClassName != "" && n.Path != "" && n.ClassName != "Folder":
		diags = append(diags, Diagnostic{
			Rule:         RuleClassPathConflict,
			Severity:     SeverityWarning,
			InstancePath: ancestry,
			Message:      fmt.Sprintf("$className %q is set alongside $path %q and may conflict with the class implied by that content", n.ClassName, n.Path),
		})
	}

	for _, name := range n.ChildNames() {
		childPath := append(append([]string{}, ancestry...), name)
		diags = append(diags, validateClasses(n.Children[name], childPath)...)
	}
	return diags
}
