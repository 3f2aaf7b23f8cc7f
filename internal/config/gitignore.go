package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser matches slash-separated relative paths against the
// patterns of a root .gitignore. Patterns are compiled to doublestar globs;
// the last matching pattern wins, so negations can re-include a path.
type GitignoreParser struct {
	patterns []GitignorePattern
}

// GitignorePattern is one compiled .gitignore line
type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	glob string
}

// NewGitignoreParser creates an empty parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	return gp.Read(file)
}

// Read parses gitignore lines from r
func (gp *GitignoreParser) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		gp.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// AddPattern parses one line. Blank lines and comments are ignored.
func (gp *GitignoreParser) AddPattern(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	p := GitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.Absolute = true
		line = line[1:]
	}
	if line == "" {
		return
	}
	p.Pattern = line

	// A slash in the middle anchors the pattern to the root, as git does
	if p.Absolute || strings.Contains(line, "/") {
		p.glob = line
	} else {
		p.glob = "**/" + line
	}
	if !doublestar.ValidatePattern(p.glob) {
		return
	}
	gp.patterns = append(gp.patterns, p)
}

// Len returns the number of active patterns
func (gp *GitignoreParser) Len() int {
	return len(gp.patterns)
}

// ShouldIgnore reports whether path (relative to the root) is ignored.
// Files inside an ignored directory are ignored too.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	if path == "" {
		return false
	}

	ignored := false
	for _, p := range gp.patterns {
		if p.matches(path, isDir) {
			ignored = !p.Negate
		}
	}
	return ignored
}

func (p GitignorePattern) matches(path string, isDir bool) bool {
	if (!p.Directory || isDir) && globMatch(p.glob, path) {
		return true
	}

	// Any parent directory matching the pattern hides everything below it
	for dir := parentDir(path); dir != ""; dir = parentDir(dir) {
		if globMatch(p.glob, dir) {
			return true
		}
	}
	return false
}

func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// ExclusionGlobs converts the non-negated patterns into doublestar exclusion
// globs that match the ignored entries and everything below them
func (gp *GitignoreParser) ExclusionGlobs() []string {
	var globs []string
	for _, p := range gp.patterns {
		if p.Negate {
			continue
		}
		if p.Directory {
			globs = append(globs, p.glob+"/**")
			continue
		}
		globs = append(globs, p.glob, p.glob+"/**")
	}
	return globs
}
