package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_BasicPatterns(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		isDir    bool
		expected bool
	}{
		{"simple file match", "README.md", "README.md", false, true},
		{"simple file no match", "README.md", "Program.cs", false, false},
		{"file match in subdirectory", "secrets.json", "Api/secrets.json", false, true},
		{"directory pattern matches directory", "bin/", "bin", true, true},
		{"directory pattern matches files inside", "bin/", "Api/bin/Debug/app.dll", false, true},
		{"directory pattern ignores same-named file", "bin/", "tools/bin", false, false},
		{"directory pattern no match outside", "bin/", "src/Program.cs", false, false},
		{"absolute pattern match", "/build", "build", true, true},
		{"absolute pattern no match subdirectory", "/build", "web/build", true, false},
		{"wildcard match", "*.user", "Shop.csproj.user", false, true},
		{"wildcard nested match", "*.user", "src/Shop/Shop.csproj.user", false, true},
		{"wildcard no match", "*.user", "Shop.csproj", false, false},
		{"anchored path pattern", "docs/generated", "docs/generated/api.md", false, true},
		{"anchored path pattern elsewhere", "docs/generated", "src/docs/generated", true, false},
		{"double star", "**/Migrations/*.cs", "Data/Migrations/Init.cs", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewGitignoreParser()
			parser.AddPattern(tt.pattern)
			assert.Equal(t, tt.expected, parser.ShouldIgnore(tt.path, tt.isDir))
		})
	}
}

func TestGitignoreParser_NegationPriority(t *testing.T) {
	parser := NewGitignoreParser()
	require.NoError(t, parser.Read(strings.NewReader(`
# build output
*.log
!important.log
logs/
`)))

	assert.Equal(t, 3, parser.Len())
	assert.True(t, parser.ShouldIgnore("debug.log", false))
	assert.False(t, parser.ShouldIgnore("important.log", false))
	assert.True(t, parser.ShouldIgnore("logs/important.log", false), "later directory rule wins")
}

func TestGitignoreParser_EdgeCases(t *testing.T) {
	parser := NewGitignoreParser()
	parser.AddPattern("")
	parser.AddPattern("   ")
	parser.AddPattern("# comment")
	parser.AddPattern("/")
	parser.AddPattern("!")
	assert.Equal(t, 0, parser.Len())
	assert.False(t, parser.ShouldIgnore("anything.cs", false))
	assert.False(t, parser.ShouldIgnore("", true))
}

func TestGitignoreParser_LoadGitignore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("obj/\n*.suo\n"), 0o644))

	parser := NewGitignoreParser()
	require.NoError(t, parser.LoadGitignore(dir))
	assert.True(t, parser.ShouldIgnore("Shop/obj/project.assets.json", false))
	assert.True(t, parser.ShouldIgnore("Shop.suo", false))
	assert.False(t, parser.ShouldIgnore("Shop/Program.cs", false))

	missing := NewGitignoreParser()
	assert.NoError(t, missing.LoadGitignore(t.TempDir()))
	assert.Equal(t, 0, missing.Len())
}

func TestGitignoreParser_ExclusionGlobs(t *testing.T) {
	parser := NewGitignoreParser()
	parser.AddPattern("bin/")
	parser.AddPattern("/coverage.xml")
	parser.AddPattern("!keep.txt")

	assert.Equal(t, []string{
		"**/bin/**",
		"coverage.xml",
		"coverage.xml/**",
	}, parser.ExclusionGlobs())
}
