package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"simple relative path", "/home/user/project/src/Foo.cs", "/home/user/project", "src/Foo.cs"},
		{"root level file", "/home/user/project/README.md", "/home/user/project", "README.md"},
		{"same directory", "/home/user/project", "/home/user/project", "."},
		{"outside root", "/other/location/Foo.cs", "/home/user/project", "/other/location/Foo.cs"},
		{"already relative", "src/Foo.cs", "/home/user/project", "src/Foo.cs"},
		{"empty path", "", "/home/user/project", ""},
		{"empty root", "/home/user/project/Foo.cs", "", "/home/user/project/Foo.cs"},
		{"unclean root", "/home/user/project/a/Foo.cs", "/home/user/project/", filepath.Join("a", "Foo.cs")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.absPath, tt.rootDir))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "A/Foo.cs", Normalize("/A/Foo.cs"))
	assert.Equal(t, "A/B/Foo.cs", Normalize(`A\B\Foo.cs`))
	assert.Equal(t, "Foo.cs", Normalize("Foo.cs"))
	assert.Equal(t, "", Normalize("/"))
}

func TestToKey(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	assert.Equal(t, "Core/Models/User.cs", ToKey("/repo/Core/Models/User.cs", "/repo"))
}

func TestSegmentsAndDir(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "Foo.cs"}, Segments("A//B/Foo.cs"))
	assert.Equal(t, []string{"Foo.cs"}, Segments("/Foo.cs"))
	assert.Equal(t, "A/B", Dir("A/B/Foo.cs"))
	assert.Equal(t, "", Dir("Foo.cs"))
}
