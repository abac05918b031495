package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeCommand_Text(t *testing.T) {
	dir := writeProject(t, `{
		"name": "Demo",
		"tree": {
			"$className": "DataModel",
			"Workspace": {
				"$path": "src/workspace",
				"Camera": {"$className": "Camera", "$properties": {"FieldOfView": 70}}
			},
			"Lighting": {"$className": "Lighting"}
		}
	}`)

	out, err := runCommand(t, NewTreeCommand(), dir)
	require.NoError(t, err)

	assert.Contains(t, out, "Demo [DataModel]")
	assert.Contains(t, out, "  Workspace [?] <- src/workspace")
	assert.Contains(t, out, "    Camera [Camera] (1 property)")
	assert.Contains(t, out, "  Lighting [Lighting]")

	// Children print in name order.
	assert.Less(t, strings.Index(out, "Lighting"), strings.Index(out, "Workspace"))
}

func TestTreeCommand_JSON(t *testing.T) {
	content := `{"name":"Demo","tree":{"$className":"DataModel","Workspace":{"$path":"src"}}}`
	dir := writeProject(t, content)

	out, err := runCommand(t, NewTreeCommand(), "--format", "json", dir)
	require.NoError(t, err)
	assert.JSONEq(t, content, out)
}

func TestTreeCommand_NoProject(t *testing.T) {
	_, err := runCommand(t, NewTreeCommand(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no project file found")
}
