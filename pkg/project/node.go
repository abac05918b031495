package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Reserved node keys. Every other key in a node object names a child
// instance. The `$` prefix is reserved so that arbitrary instance names can
// never collide with current or future structural fields.
const (
	keyClassName              = "$className"
	keyPath                   = "$path"
	keyProperties             = "$properties"
	keyIgnoreUnknownInstances = "$ignoreUnknownInstances"
)

// ProjectNode describes one instance and its descendants.
//
// A node must resolve a class either explicitly through ClassName or
// implicitly through the content referenced by Path; resolving the implicit
// class requires inspecting that content and is left to the sync engine, so
// this package only records the structural facts.
type ProjectNode struct {
	// ClassName is the explicit class of the described instance. Empty
	// means unset; a node without a ClassName must have a Path.
	ClassName string

	// Children maps child instance names to their nodes. Names are unique
	// among siblings. Use ChildNames for deterministic traversal order.
	Children map[string]*ProjectNode

	// Properties holds raw property assignments as decoded JSON values.
	// Values are not resolved against any class schema here.
	Properties map[string]any

	// IgnoreUnknownInstances controls whether instances found under this
	// node that the project does not describe are left alone (true) or
	// removed (false) during sync. Nil means "use the default": see
	// IgnoresUnknownInstances.
	IgnoreUnknownInstances *bool

	// Path references a file or directory whose content supplies this
	// node's structure. Relative paths are resolved against the project's
	// folder location. Empty means unset.
	Path string
}

// IgnoresUnknownInstances resolves the tri-state IgnoreUnknownInstances
// field. An explicit value always wins. When unset, a purely declarative
// node defaults to true (its unlisted children should not be destroyed)
// while a path-bound node defaults to false (it fully owns its contents, so
// unknown instances under it are presumed stale).
func (n *ProjectNode) IgnoresUnknownInstances() bool {
	if n.IgnoreUnknownInstances != nil {
		return *n.IgnoreUnknownInstances
	}
	return n.Path == ""
}

// ChildNames returns the names of the node's children sorted by name.
func (n *ProjectNode) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InstanceCount returns the number of instances this node describes,
// including itself.
func (n *ProjectNode) InstanceCount() int {
	count := 1
	for _, child := range n.Children {
		count += child.InstanceCount()
	}
	return count
}

// UnmarshalJSON parses a node from its open-ended object form: the four
// reserved `$` keys are projected out as structural fields and every other
// key recurses as a named child node. A non-object value under a child key
// is a parse error, matching the closed-schema policy.
func (n *ProjectNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case keyClassName:
			if err := json.Unmarshal(value, &n.ClassName); err != nil {
				return fmt.Errorf("%s: %w", keyClassName, err)
			}
		case keyPath:
			if err := json.Unmarshal(value, &n.Path); err != nil {
				return fmt.Errorf("%s: %w", keyPath, err)
			}
		case keyProperties:
			if err := json.Unmarshal(value, &n.Properties); err != nil {
				return fmt.Errorf("%s: %w", keyProperties, err)
			}
		case keyIgnoreUnknownInstances:
			if err := json.Unmarshal(value, &n.IgnoreUnknownInstances); err != nil {
				return fmt.Errorf("%s: %w", keyIgnoreUnknownInstances, err)
			}
		default:
			// Includes unrecognized $-prefixed keys: they parse as
			// children and are surfaced later as reserved-name
			// diagnostics rather than rejected here.
			var child ProjectNode
			if err := json.Unmarshal(value, &child); err != nil {
				return fmt.Errorf("child %q: %w", key, err)
			}
			if n.Children == nil {
				n.Children = make(map[string]*ProjectNode)
			}
			n.Children[key] = &child
		}
	}

	return nil
}

// MarshalJSON renders the node with stable output: reserved keys first in a
// fixed order, then children sorted by name. Absent optional fields are
// omitted entirely rather than emitted as null.
func (n *ProjectNode) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if n.ClassName != "" {
		if err := write(keyClassName, n.ClassName); err != nil {
			return nil, err
		}
	}
	if n.IgnoreUnknownInstances != nil {
		if err := write(keyIgnoreUnknownInstances, *n.IgnoreUnknownInstances); err != nil {
			return nil, err
		}
	}
	if n.Path != "" {
		if err := write(keyPath, n.Path); err != nil {
			return nil, err
		}
	}
	if len(n.Properties) > 0 {
		// encoding/json sorts map keys, keeping property order stable.
		if err := write(keyProperties, n.Properties); err != nil {
			return nil, err
		}
	}
	for _, name := range n.ChildNames() {
		if err := write(name, n.Children[name]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ValidateReservedNames walks the node and all descendants depth-first and
// returns a diagnostic for every child key that starts with `$`. Such keys
// are reserved for structural fields; using one as an instance name is a
// soft violation that never blocks a load. The walk always runs to
// completion and never mutates the tree.
func (n *ProjectNode) ValidateReservedNames() []Diagnostic {
	return n.validateReservedNames(nil)
}

func (n *ProjectNode) validateReservedNames(ancestry []string) []Diagnostic {
	var diags []Diagnostic
	for _, name := range n.ChildNames() {
		childPath := append(append([]string{}, ancestry...), name)
		if strings.HasPrefix(name, "$") {
			diags = append(diags, Diagnostic{
				Rule:         RuleReservedName,
				Severity:     SeverityWarning,
				InstancePath: childPath,
				Message:      fmt.Sprintf("keys starting with '$' are reserved for structural fields; the child %q should be renamed", name),
			})
		}
		diags = append(diags, n.Children[name].validateReservedNames(childPath)...)
	}
	return diags
}
