package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalProject = `{"name":"Demo","tree":{"$className":"Folder"}}`

func TestIsProjectFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"default project file", "default.project.json", true},
		{"named project file", "game.project.json", true},
		{"nested path", "some/deep/dir/default.project.json", true},
		{"plain json", "default.json", false},
		{"suffix only as directory", ".project.json/file.txt", false},
		{"bare suffix", ".project.json", true},
		{"nonexistent is fine, name is all that counts", "does/not/exist.project.json", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProjectFile(tt.path))
		})
	}
}

func TestLocate_File(t *testing.T) {
	dir := t.TempDir()

	projectPath := filepath.Join(dir, "game.project.json")
	require.NoError(t, os.WriteFile(projectPath, []byte(minimalProject), 0o644))
	otherPath := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(otherPath, []byte(`{}`), 0o644))

	located, ok := Locate(projectPath)
	require.True(t, ok)
	assert.Equal(t, projectPath, located)

	_, ok = Locate(otherPath)
	assert.False(t, ok, "a file without the project suffix is not a project")
}

func TestLocate_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultProjectFile), []byte(minimalProject), 0o644))

	located, ok := Locate(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, DefaultProjectFile), located)
}

func TestLocate_DirectoryNamedLikeProjectFile(t *testing.T) {
	// A directory literally named default.project.json can never be parsed
	// as JSON, so it is treated as not found rather than as an error.
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultProjectFile), 0o755))

	_, ok := Locate(dir)
	assert.False(t, ok)
}

func TestLocate_Nonexistent(t *testing.T) {
	_, ok := Locate(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)

	_, ok = Locate(filepath.Join(t.TempDir(), "empty-dir-without-default"))
	assert.False(t, ok)
}

func TestLoadFuzzy_NotFoundIsNotAnError(t *testing.T) {
	p, err := LoadFuzzy(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLoadFuzzy_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultProjectFile), []byte(minimalProject), 0o644))

	p, err := LoadFuzzy(dir)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Demo", p.Name)
	assert.NotEmpty(t, p.FileLocation, "FileLocation must be stamped before the project is returned")
}

func TestLoadFuzzy_ParseFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultProjectFile), []byte(`{not json`), 0o644))

	p, err := LoadFuzzy(dir)
	assert.Nil(t, p)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Path, DefaultProjectFile)
}

func TestLoad_ReadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "gone.project.json"))
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Contains(t, readErr.Path, "gone.project.json")
}

func TestLoad_StampsAbsoluteLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.project.json")
	require.NoError(t, os.WriteFile(path, []byte(minimalProject), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p.FileLocation))
	assert.Equal(t, dir, p.FolderLocation())
}

func TestLoad_IndependentValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.project.json")
	content := `{
		"name": "Demo",
		"tree": {
			"$className": "DataModel",
			"Workspace": {"$path": "src/workspace"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, first, second, "two loads of the same content are structurally equal")

	// Mutating one must not leak into the other: no shared state.
	first.Tree.Children["Workspace"].Path = "elsewhere"
	assert.NotEqual(t, first.Tree.Children["Workspace"].Path, second.Tree.Children["Workspace"].Path)
}

func TestLoadFromBytes(t *testing.T) {
	p, err := LoadFromBytes([]byte(minimalProject), "/srv/projects/demo/default.project.json")
	require.NoError(t, err)
	assert.Equal(t, "/srv/projects/demo/default.project.json", p.FileLocation)
	assert.Equal(t, "/srv/projects/demo", filepath.ToSlash(p.FolderLocation()))
}

func TestLoadFromBytes_TopLevelFields(t *testing.T) {
	content := `{
		"name": "Demo",
		"servePort": 34873,
		"servePlaceIds": [123456789, 987654321],
		"tree": {"$className": "DataModel"}
	}`

	p, err := LoadFromBytes([]byte(content), "default.project.json")
	require.NoError(t, err)

	require.NotNil(t, p.ServePort)
	assert.Equal(t, uint16(34873), *p.ServePort)

	assert.Len(t, p.ServePlaceIDs, 2)
	assert.True(t, p.ServePlaceIDs.Contains(123456789))
	assert.True(t, p.ServePlaceIDs.Contains(987654321))
	assert.False(t, p.ServePlaceIDs.Contains(42))
}

func TestLoadFromBytes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{`},
		{"unknown top-level key", `{"name":"Demo","tree":{"$className":"Folder"},"foo":1}`},
		{"missing name", `{"tree":{"$className":"Folder"}}`},
		{"missing tree", `{"name":"Demo"}`},
		{"wrong name type", `{"name":5,"tree":{"$className":"Folder"}}`},
		{"serve port out of range", `{"name":"Demo","tree":{"$className":"Folder"},"servePort":90000}`},
		{"negative place id", `{"name":"Demo","tree":{"$className":"Folder"},"servePlaceIds":[-1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadFromBytes([]byte(tt.content), "default.project.json")
			assert.Nil(t, p)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestLoadFromBytes_UnknownFieldIsTyped(t *testing.T) {
	_, err := LoadFromBytes([]byte(`{"name":"Demo","tree":{"$className":"Folder"},"foo":1}`), "p.project.json")
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "foo", unknown.Field)
}

func TestSave_NotImplemented(t *testing.T) {
	p, err := LoadFromBytes([]byte(minimalProject), "default.project.json")
	require.NoError(t, err)
	assert.ErrorIs(t, p.Save(), ErrSaveNotImplemented)
}
