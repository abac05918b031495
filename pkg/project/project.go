// Package project loads, validates, and exposes declarative project files:
// JSON documents that map a named hierarchy of nodes onto an instance tree.
// The package owns the schema, its defaulting and validation rules, and the
// logic that locates a project file from a filesystem path. Reconciling the
// parsed model against a live instance tree is the sync engine's job and is
// out of scope here.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultProjectFile is the file name probed for inside a directory.
const DefaultProjectFile = "default.project.json"

// projectFileSuffix identifies project files purely by name.
const projectFileSuffix = ".project.json"

// Project is one fully parsed project file. Values are constructed once per
// load and never mutated afterwards; reloading a changed file produces a
// wholly new Project.
type Project struct {
	// Name is the display name of the root instance.
	Name string

	// Tree is the root node. Every project describes at least one instance.
	Tree *ProjectNode

	// ServePort is the preferred port for a live-sync session. Nil means
	// "use the default".
	ServePort *uint16

	// ServePlaceIDs, when non-empty, is an allow-list of remote place
	// identifiers a live-sync session may be accepted for. Empty means no
	// restriction.
	ServePlaceIDs PlaceIDSet

	// FileLocation is the path to the file this value was parsed from. It
	// is not part of the persisted schema; the loader stamps it before the
	// Project is handed to any caller, and every relative path in the tree
	// resolves against its parent directory.
	FileLocation string

	// Diagnostics holds the validation findings from the load. Warnings
	// never block a load; see Validate.
	Diagnostics []Diagnostic
}

// IsProjectFile tells whether the given path names a project file. The check
// is purely by name: the file name must end with ".project.json". No file
// content or filesystem metadata is consulted.
func IsProjectFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), projectFileSuffix)
}

// Locate finds the concrete project file a path refers to.
//
// A regular file counts only if IsProjectFile says so. A directory counts
// if it directly contains a regular file named "default.project.json"; a
// subdirectory with that name is silently treated as not found, since a
// directory can never be parsed as JSON. Nonexistent paths and failed
// metadata lookups are absorbed as not found, never reported as errors.
func Locate(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if info.Mode().IsRegular() {
		if IsProjectFile(path) {
			return path, true
		}
		return "", false
	}

	child := filepath.Join(path, DefaultProjectFile)
	childInfo, err := os.Stat(child)
	if err != nil || !childInfo.Mode().IsRegular() {
		return "", false
	}
	return child, true
}

// LoadFuzzy loads the project that the given path refers to, directly or as
// a directory containing a default project file. It returns nil, nil when no
// project is located there: probing an ambiguous path is routine and not an
// error. IO and parse failures from an actual load do propagate.
func LoadFuzzy(path string) (*Project, error) {
	located, ok := Locate(path)
	if !ok {
		return nil, nil
	}
	return Load(located)
}

// Load reads and parses the project file at exactly the given path. The
// returned Project has FileLocation stamped (absolute when possible) and
// Diagnostics populated. Failures are typed: *ReadError for IO problems,
// *ParseError for malformed content.
func Load(path string) (*Project, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	location := path
	if abs, err := filepath.Abs(path); err == nil {
		location = abs
	}
	return LoadFromBytes(contents, location)
}

// LoadFromBytes runs the same parse and validation pipeline as Load on
// content the caller already holds, for example received over a network.
// The location is still required: relative-path resolution everywhere else
// depends on FileLocation being set.
func LoadFromBytes(contents []byte, location string) (*Project, error) {
	p, err := parse(contents)
	if err != nil {
		return nil, &ParseError{Path: location, Err: err}
	}
	p.FileLocation = location
	p.Diagnostics = p.Validate()
	return p, nil
}

// topLevelFields is the closed set of keys allowed in a project document.
var topLevelFields = map[string]bool{
	"name":          true,
	"tree":          true,
	"servePort":     true,
	"servePlaceIds": true,
}

// parse decodes a project document. The top level is a closed schema:
// the document is decoded into a generic map first, unknown keys are
// rejected, and only then are the known fields decoded into place.
func parse(contents []byte) (*Project, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, err
	}

	for field := range raw {
		if !topLevelFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}
	for _, field := range []string{"name", "tree"} {
		if _, ok := raw[field]; !ok {
			return nil, &MissingFieldError{Field: field}
		}
	}

	var p Project
	if err := json.Unmarshal(raw["name"], &p.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	p.Tree = &ProjectNode{}
	if err := json.Unmarshal(raw["tree"], p.Tree); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	if value, ok := raw["servePort"]; ok {
		if err := json.Unmarshal(value, &p.ServePort); err != nil {
			return nil, fmt.Errorf("servePort: %w", err)
		}
	}
	if value, ok := raw["servePlaceIds"]; ok {
		if err := json.Unmarshal(value, &p.ServePlaceIDs); err != nil {
			return nil, fmt.Errorf("servePlaceIds: %w", err)
		}
	}

	return &p, nil
}

// FolderLocation returns the parent directory of FileLocation: the anchor
// directory against which every relative path in the tree is resolved,
// regardless of how deep in the tree it appears.
func (p *Project) FolderLocation() string {
	return filepath.Dir(p.FileLocation)
}

// Save would persist the project back to its file location. It is declared
// for symmetry with Load but always returns ErrSaveNotImplemented.
func (p *Project) Save() error {
	return ErrSaveNotImplemented
}

// MarshalJSON renders the project in its persisted schema form: stable key
// order, absent optional fields omitted, FileLocation and Diagnostics left
// out since they are derived.
func (p *Project) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := write("name", p.Name); err != nil {
		return nil, err
	}
	if p.ServePort != nil {
		if err := write("servePort", *p.ServePort); err != nil {
			return nil, err
		}
	}
	if len(p.ServePlaceIDs) > 0 {
		if err := write("servePlaceIds", p.ServePlaceIDs); err != nil {
			return nil, err
		}
	}
	if err := write("tree", p.Tree); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PlaceIDSet is a set of opaque numeric place identifiers, persisted as a
// JSON array.
type PlaceIDSet map[uint64]struct{}

// Contains reports whether id is a member. A nil or empty set restricts
// nothing, so membership checks on it should be guarded by len.
func (s PlaceIDSet) Contains(id uint64) bool {
	_, ok := s[id]
	return ok
}

// UnmarshalJSON decodes the set from a JSON array of unsigned integers.
func (s *PlaceIDSet) UnmarshalJSON(data []byte) error {
	var ids []uint64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(PlaceIDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

// MarshalJSON encodes the set as a sorted JSON array.
func (s PlaceIDSet) MarshalJSON() ([]byte, error) {
	ids := make([]uint64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return json.Marshal(ids)
}
