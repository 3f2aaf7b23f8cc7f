package indexing

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/contextweaver/internal/config"
	"github.com/standardbeagle/contextweaver/internal/debug"
	"github.com/standardbeagle/contextweaver/internal/errors"
	"github.com/standardbeagle/contextweaver/internal/parser"
	"github.com/standardbeagle/contextweaver/internal/types"
	"github.com/standardbeagle/contextweaver/pkg/pathutil"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ScanOptions are the limits a FileScanner applies on top of the settings
type ScanOptions struct {
	MaxFileSize      int64 // 0 = no limit
	RespectGitignore bool
	// SkipFiles are relative paths never selected, such as the report being written
	SkipFiles []string
}

// FileScanner walks an analysis root and loads the files selected by the
// settings. Excluded directories are pruned without being entered.
type FileScanner struct {
	root           string
	settings       config.AnalysisSettings
	opts           ScanOptions
	excludeNames   map[string]struct{}
	excludeGlobs   []string
	skipFiles      map[string]struct{}
	gitignore      *config.GitignoreParser
	gitignoreErr   error
	binaryDetector *BinaryDetector
}

// NewFileScanner creates a scanner for root. Exclude patterns without glob
// syntax match any directory name along a path; the others are doublestar
// globs matched against the slash-separated relative path.
func NewFileScanner(root string, settings config.AnalysisSettings, opts ScanOptions) *FileScanner {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	s := &FileScanner{
		root:           root,
		settings:       settings,
		opts:           opts,
		excludeNames:   map[string]struct{}{},
		skipFiles:      map[string]struct{}{},
		binaryDetector: NewBinaryDetector(),
	}
	for _, f := range opts.SkipFiles {
		s.skipFiles[pathutil.Normalize(f)] = struct{}{}
	}
	for _, p := range settings.ExcludePatterns {
		if strings.ContainsAny(p, "*?[{/") {
			s.excludeGlobs = append(s.excludeGlobs, p)
		} else {
			s.excludeNames[p] = struct{}{}
		}
	}

	if opts.RespectGitignore {
		s.gitignore = config.NewGitignoreParser()
		s.gitignoreErr = s.gitignore.LoadGitignore(root)
	}
	return s
}

// Root returns the absolute analysis root
func (s *FileScanner) Root() string {
	return s.root
}

// RootName is the module name of files directly under the root
func (s *FileScanner) RootName() string {
	return filepath.Base(s.root)
}

// Settings returns the settings the scanner filters with
func (s *FileScanner) Settings() config.AnalysisSettings {
	return s.settings
}

// Scan returns the selected files sorted by relative path. Files that are
// selected but cannot be used are reported as diagnostics.
func (s *FileScanner) Scan(ctx context.Context) ([]types.SourceFile, []types.Diagnostic, error) {
	var files []types.SourceFile
	var diags []types.Diagnostic
	if s.gitignoreErr != nil {
		diags = append(diags, types.Warning(types.DiagConfigReadError, ".gitignore", s.gitignoreErr))
	}

	debug.LogPipeline("scanning %s", s.root)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := pathutil.ToKey(path, s.root)
		if walkErr != nil {
			if path == s.root {
				return walkErr
			}
			diags = append(diags, types.Warning(types.DiagFileSkipped, rel, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != s.root && s.ExcludesDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !s.Selects(rel) {
			return nil
		}

		file, skip, err := s.load(path, rel, d)
		switch {
		case err != nil:
			diags = append(diags, types.Warning(types.DiagFileSkipped, rel, err))
		case !skip:
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, diags, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })
	debug.LogPipeline("scan found %d files, %d diagnostics", len(files), len(diags))
	return files, diags, nil
}

// ExcludesDir reports whether the directory at rel (relative, slash
// separated) is pruned
func (s *FileScanner) ExcludesDir(rel string) bool {
	if _, ok := s.excludeNames[filepath.Base(rel)]; ok {
		return true
	}
	for _, g := range s.excludeGlobs {
		if globMatch(g, rel) || globMatch(g, rel+"/") {
			return true
		}
	}
	return s.gitignore != nil && s.gitignore.ShouldIgnore(rel, true)
}

// Selects reports whether a file path passes the path-based filters:
// no excluded directory along the way, no matching exclude glob or
// gitignore rule, an included extension and no binary extension
func (s *FileScanner) Selects(rel string) bool {
	segments := pathutil.Segments(rel)
	if len(segments) == 0 {
		return false
	}
	if _, ok := s.skipFiles[rel]; ok {
		return false
	}
	for _, dir := range segments[:len(segments)-1] {
		if _, ok := s.excludeNames[dir]; ok {
			return false
		}
	}
	for _, g := range s.excludeGlobs {
		if globMatch(g, rel) {
			return false
		}
	}
	if s.gitignore != nil && s.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	return s.settings.Includes(rel) && !s.binaryDetector.IsBinaryByExtension(rel)
}

// load reads one selected file. skip is set for content that turns out to be binary.
func (s *FileScanner) load(path, rel string, d fs.DirEntry) (file types.SourceFile, skip bool, err error) {
	info, err := d.Info()
	if err != nil {
		return file, false, errors.NewFileError("stat", rel, err)
	}
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		return file, false, errors.NewFileTooLargeError(rel, info.Size(), s.opts.MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return file, false, errors.NewFileError("read", rel, err)
	}
	if s.binaryDetector.IsBinaryContent(data) {
		debug.LogPipeline("skipping binary content in %s", rel)
		return file, true, nil
	}

	return types.SourceFile{
		RelativePath: rel,
		Source:       string(bytes.TrimPrefix(data, utf8BOM)),
		Language:     parser.LanguageForPath(rel),
	}, false, nil
}

// LoadFile reads a single file below the root through the same filters as Scan
func (s *FileScanner) LoadFile(rel string) (types.SourceFile, error) {
	rel = pathutil.Normalize(rel)
	if !s.Selects(rel) {
		return types.SourceFile{}, fmt.Errorf("%s is not selected by the analysis settings", rel)
	}
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	info, err := os.Lstat(path)
	if err != nil {
		return types.SourceFile{}, errors.NewFileError("stat", rel, err)
	}
	file, skip, err := s.load(path, rel, fs.FileInfoToDirEntry(info))
	if err != nil {
		return types.SourceFile{}, err
	}
	if skip {
		return types.SourceFile{}, fmt.Errorf("%s has binary content", rel)
	}
	return file, nil
}

func globMatch(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}
