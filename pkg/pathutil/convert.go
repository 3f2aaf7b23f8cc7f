// Package pathutil converts between the absolute paths used while walking a
// tree and the slash-normalized relative paths that identify files in results.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/Foo.cs", "/home/user/project") → "src/Foo.cs"
//   - ToRelative("/other/location/Foo.cs", "/home/user/project") → "/other/location/Foo.cs" (outside root)
//   - ToRelative("src/Foo.cs", "/home/user/project") → "src/Foo.cs" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// Outside the root: the absolute path is clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// Normalize returns path with forward slashes and no leading slash.
// Backslashes are converted regardless of the host OS so Windows paths
// reported by other tools normalize the same way.
func Normalize(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = filepath.ToSlash(path)
	return strings.TrimLeft(path, "/")
}

// ToKey converts absPath into the identity key used for results:
// relative to rootDir, slash-normalized, no leading slash.
func ToKey(absPath, rootDir string) string {
	return Normalize(ToRelative(absPath, rootDir))
}

// Segments splits a normalized relative path into its non-empty segments
func Segments(relPath string) []string {
	parts := strings.Split(Normalize(relPath), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Dir returns the slash-separated parent directory of relPath, or "" at the root
func Dir(relPath string) string {
	relPath = Normalize(relPath)
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return ""
	}
	return relPath[:idx]
}
