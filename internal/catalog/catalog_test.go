package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	projects := Default().Projects()
	require.Len(t, projects, 2)

	assert.Equal(t, 1, projects[0].Id)
	assert.Equal(t, "Project One", projects[0].Title)
	assert.Equal(t, "A sample React & Tailwind project", projects[0].Description)
	assert.Equal(t, "/project1.png", projects[0].Image)
	assert.Equal(t, []string{"React", "Tailwind"}, projects[0].Tech)
	assert.Equal(t, "https://github.com/SymplyLade/project1", projects[0].RepoLink)
	assert.Equal(t, "#", projects[0].LiveLink)

	assert.Equal(t, 2, projects[1].Id)
	assert.Equal(t, "Project Two", projects[1].Title)
	assert.Equal(t, "FastAPI backend with MySQL", projects[1].Description)
	assert.Equal(t, []string{"FastAPI", "Python", "MySQL"}, projects[1].Tech)
	assert.Equal(t, "https://github.com/SymplyLade/project2", projects[1].RepoLink)
}

// TestProjectsReturnsCopies expects changes to a returned list to leave the catalog untouched.
func TestProjectsReturnsCopies(t *testing.T) {
	c := Default()
	first := c.Projects()
	first[0].Title = "changed"
	first[0].Tech[0] = "changed"

	second := c.Projects()
	require.Len(t, second, 2)
	assert.Equal(t, "Project One", second[0].Title)
	assert.Equal(t, "React", second[0].Tech[0])
}

func TestParseInvalid(t *testing.T) {
	invalid := []string{
		"not: [a list",
		"- id: 0\n  title: Zero\n",
		"- id: 1\n  title: One\n- id: 1\n  title: Again\n",
		"- id: 3\n  title: \"  \"\n",
	}
	for _, data := range invalid {
		_, err := Parse([]byte(data))
		assert.Error(t, err, "catalog: "+data)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	content := "- id: 7\n  title: Seven\n  tech: [Go]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	projects := c.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, 7, projects[0].Id)
	assert.Equal(t, []string{"Go"}, projects[0].Tech)

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Len(t, defaults.Projects(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
