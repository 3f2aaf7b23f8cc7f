// Build artifact detection from project files: .csproj and
// Directory.Build.props output paths, package.json and tsconfig.json outDir,
// Cargo.toml and pyproject.toml target directories.
package config

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BuildArtifactDetector finds build output directories declared by project files
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a detector for projectRoot
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns doublestar globs such as "**/artifacts/**"
// for every declared output directory
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var dirs []string
	dirs = append(dirs, bad.detectDotNetOutputs()...)
	dirs = append(dirs, bad.detectJavaScriptOutputs()...)
	dirs = append(dirs, bad.detectTOMLOutputs()...)

	patterns := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if p := outputGlob(d); p != "" {
			patterns = append(patterns, p)
		}
	}
	return DeduplicatePatterns(patterns)
}

// outputGlob turns a declared directory into an exclusion glob. MSBuild
// property references and absolute paths cannot be matched and are dropped.
func outputGlob(dir string) string {
	dir = strings.TrimSpace(strings.ReplaceAll(dir, `\`, "/"))
	if strings.HasPrefix(dir, "/") || strings.Contains(dir, ":") {
		return ""
	}
	dir = strings.Trim(strings.TrimPrefix(dir, "./"), "/")
	if dir == "" || dir == "." || strings.Contains(dir, "$(") || strings.HasPrefix(dir, "..") {
		return ""
	}
	return "**/" + dir + "/**"
}

type msbuildProject struct {
	PropertyGroups []struct {
		OutputPath                 string `xml:"OutputPath"`
		BaseOutputPath             string `xml:"BaseOutputPath"`
		BaseIntermediateOutputPath string `xml:"BaseIntermediateOutputPath"`
		PublishDir                 string `xml:"PublishDir"`
	} `xml:"PropertyGroup"`
}

// detectDotNetOutputs reads Directory.Build.props and the .csproj files at the root
func (bad *BuildArtifactDetector) detectDotNetOutputs() []string {
	files := []string{filepath.Join(bad.projectRoot, "Directory.Build.props")}
	if matches, err := filepath.Glob(filepath.Join(bad.projectRoot, "*.csproj")); err == nil {
		files = append(files, matches...)
	}

	var dirs []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var proj msbuildProject
		if xml.Unmarshal(data, &proj) != nil {
			continue
		}
		for _, pg := range proj.PropertyGroups {
			dirs = append(dirs, pg.OutputPath, pg.BaseOutputPath, pg.BaseIntermediateOutputPath, pg.PublishDir)
		}
	}
	return dirs
}

// detectJavaScriptOutputs reads package.json build scripts and tsconfig.json compilerOptions
func (bad *BuildArtifactDetector) detectJavaScriptOutputs() []string {
	var dirs []string

	var pkg struct {
		Scripts map[string]string `json:"scripts"`
		Build   struct {
			OutDir string `json:"outDir"`
		} `json:"build"`
	}
	if data, err := os.ReadFile(filepath.Join(bad.projectRoot, "package.json")); err == nil && json.Unmarshal(data, &pkg) == nil {
		names := make([]string, 0, len(pkg.Scripts))
		for name := range pkg.Scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parts := strings.Fields(pkg.Scripts[name])
			for i, part := range parts {
				if (part == "--outDir" || part == "-outDir") && i+1 < len(parts) {
					dirs = append(dirs, strings.Trim(parts[i+1], "\"'"))
				}
			}
		}
		dirs = append(dirs, pkg.Build.OutDir)
	}

	var tsconfig struct {
		CompilerOptions struct {
			OutDir string `json:"outDir"`
		} `json:"compilerOptions"`
	}
	if data, err := os.ReadFile(filepath.Join(bad.projectRoot, "tsconfig.json")); err == nil && json.Unmarshal(data, &tsconfig) == nil {
		dirs = append(dirs, tsconfig.CompilerOptions.OutDir)
	}
	return dirs
}

// detectTOMLOutputs reads Cargo.toml and pyproject.toml
func (bad *BuildArtifactDetector) detectTOMLOutputs() []string {
	var dirs []string

	var cargo struct {
		Build struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"build"`
		Profile map[string]struct {
			TargetDir string `toml:"target-dir"`
		} `toml:"profile"`
	}
	if data, err := os.ReadFile(filepath.Join(bad.projectRoot, "Cargo.toml")); err == nil && toml.Unmarshal(data, &cargo) == nil {
		dirs = append(dirs, cargo.Build.TargetDir)
		names := make([]string, 0, len(cargo.Profile))
		for name := range cargo.Profile {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			dirs = append(dirs, cargo.Profile[name].TargetDir)
		}
	}

	var pyproject struct {
		Tool struct {
			Poetry struct {
				Build struct {
					TargetDir string `toml:"target-dir"`
				} `toml:"build"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if data, err := os.ReadFile(filepath.Join(bad.projectRoot, "pyproject.toml")); err == nil && toml.Unmarshal(data, &pyproject) == nil {
		dirs = append(dirs, pyproject.Tool.Poetry.Build.TargetDir)
	}
	return dirs
}
