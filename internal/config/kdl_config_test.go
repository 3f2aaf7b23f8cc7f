package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cwerrors "github.com/standardbeagle/contextweaver/internal/errors"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", "/repo/shop")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/repo/shop", cfg.Project.Root)
	assert.Equal(t, "shop", cfg.Project.Name)
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
	assert.Equal(t, runtime.NumCPU(), cfg.Performance.Workers)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.RespectGitignore)
	assert.False(t, cfg.Index.StrictParse)
	assert.Empty(t, cfg.Include)
	assert.Empty(t, cfg.Exclude)
}

func TestParseKDL_FullConfig(t *testing.T) {
	content := `
project {
    name "storefront"
}
output {
    format "json"
    path "report.json"
}
performance {
    workers 3
    debounce_ms 50
}
index {
    max_file_size "2MB"
    respect_gitignore false
    strict_parse true
}
include ".razor" ".cshtml"
exclude {
    "Migrations"
    "**/*.g.cs"
}
`
	cfg, err := parseKDL(content, "/repo")
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Project.Name)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "report.json", cfg.Output.Path)
	assert.Equal(t, 3, cfg.Performance.Workers)
	assert.Equal(t, 50, cfg.Performance.DebounceMs)
	assert.Equal(t, int64(2*1024*1024), cfg.Index.MaxFileSize)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.StrictParse)
	assert.Equal(t, []string{".razor", ".cshtml"}, cfg.Include)
	assert.Equal(t, []string{"Migrations", "**/*.g.cs"}, cfg.Exclude)
}

func TestParseKDL_IntegerFileSize(t *testing.T) {
	cfg, err := parseKDL(`index { max_file_size 4096; }`, "/repo")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), cfg.Index.MaxFileSize)
}

func TestParseKDL_Invalid(t *testing.T) {
	tests := map[string]string{
		"unclosed block":   `output { format "json"`,
		"nested unclosed":  "index {\n    max_file_size 10\n    output {\n}",
		"stray close":      `output { format "json" } }`,
		"unclosed string":  `output { format "json }`,
		"unclosed comment": "/* output { format \"json\" }",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseKDL(content, "/repo")
			assert.Error(t, err)
		})
	}
}

func TestCheckBlocks_IgnoresBracesInStringsAndComments(t *testing.T) {
	content := `// exclude { "old" }
project { name "curly { brace" }
/* output {
   format "yaml"
*/
output { path r#"reports\{date}.md"# }
exclude "**/{bin,obj}/**"
`
	require.NoError(t, checkBlocks(content))

	err := checkBlocks("project {\n    name \"shop\"\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unclosed block")
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10MB":   10 << 20,
		"500KB":  500 << 10,
		"1GB":    1 << 30,
		"64B":    64,
		"128":    128,
		" 2 mb ": 2 << 20,
	}
	for in, expected := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := parseSize(in)
			require.NoError(t, err)
			assert.Equal(t, expected, got)
		})
	}

	_, err := parseSize("lots")
	assert.Error(t, err)
}

func TestLoad_ProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile),
		[]byte(`output { format "yaml"; }`+"\n"+`exclude "Legacy"`), 0o644))

	cfg, err := Load("", root)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, []string{"Legacy"}, cfg.Exclude)
	assert.Equal(t, filepath.Base(root), cfg.Project.Name)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()

	cfg, err := Load("does-not-exist.kdl", root)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, root, cfg.Project.Root)
}

func TestLoad_GlobalMergedWithProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ConfigFile),
		[]byte(`exclude "Generated"`+"\n"+`include ".razor"`), 0o644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile),
		[]byte(`exclude "Legacy"`+"\n"+`performance { workers 2; }`), 0o644))

	cfg, err := Load(ConfigFile, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated", "Legacy"}, cfg.Exclude)
	assert.Equal(t, []string{".razor"}, cfg.Include)
	assert.Equal(t, 2, cfg.Performance.Workers)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile),
		[]byte(`performance { workers -1; }`), 0o644))

	_, err := Load("", root)
	var cerr *cwerrors.ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, cerr.Field, "Workers")
}

func TestConfig_Apply(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tsconfig.json"),
		[]byte(`{"compilerOptions": {"outDir": "./out-tsc"}}`), 0o644))

	cfg := Default(root)
	cfg.Include = []string{".razor", ".cs"}
	cfg.Exclude = []string{"Legacy"}

	settings := cfg.Apply(DefaultSettings())
	assert.Contains(t, settings.IncludedExtensions, ".razor")
	assert.Equal(t, len(DefaultSettings().IncludedExtensions)+1, len(settings.IncludedExtensions))
	assert.Contains(t, settings.ExcludePatterns, "Legacy")
	assert.Contains(t, settings.ExcludePatterns, "**/out-tsc/**")

	assert.NotContains(t, DefaultSettings().ExcludePatterns, "Legacy")
}
