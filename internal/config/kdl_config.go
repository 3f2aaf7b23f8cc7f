package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	cwerrors "github.com/standardbeagle/contextweaver/internal/errors"
)

// LoadKDL reads a .contextweaver.kdl file. It returns nil, nil when the file
// does not exist.
func LoadKDL(path, root string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, cwerrors.NewConfigError(path, "", err)
	}

	cfg, err := parseKDL(string(content), root)
	if err != nil {
		return nil, cwerrors.NewConfigError(path, "", err)
	}
	return cfg, nil
}

// parseKDL builds a config from KDL text, starting from the defaults:
//
//	project { name "shop" }
//	output { format "markdown"; path "analysis_report.md" }
//	performance { workers 4; debounce_ms 300 }
//	index { max_file_size "10MB"; respect_gitignore true; strict_parse false }
//	include ".razor" ".cshtml"
//	exclude "Migrations" "**/*.g.cs"
func parseKDL(content, root string) (*Config, error) {
	cfg := Default(root)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}
	// kdl-go accepts a document that ends inside an open block
	if err := checkBlocks(content); err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
				assignSimpleString(cn, "path", func(v string) { cfg.Output.Path = v })
			}
		case "performance":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.DebounceMs = v
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Index.MaxFileSize = sz
						} else {
							log.Printf("WARNING: invalid max_file_size %q in KDL config: %v", s, err)
						}
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "strict_parse":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.StrictParse = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

// checkBlocks reports braces that do not pair up. Strings, raw strings and
// comments are skipped.
func checkBlocks(content string) error {
	depth, line := 0, 1
	for i := 0; i < len(content); i++ {
		switch c := content[i]; {
		case c == '\n':
			line++
		case c == '/' && strings.HasPrefix(content[i:], "//"):
			for i < len(content) && content[i] != '\n' {
				i++
			}
			line++
		case c == '/' && strings.HasPrefix(content[i:], "/*"):
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				return fmt.Errorf("line %d: unterminated comment", line)
			}
			line += strings.Count(content[i:i+2+end], "\n")
			i += end + 3
		case c == 'r' && rawStringStart(content[i+1:]) >= 0:
			hashes := rawStringStart(content[i+1:])
			closing := "\"" + strings.Repeat("#", hashes)
			body := content[i+2+hashes:]
			end := strings.Index(body, closing)
			if end < 0 {
				return fmt.Errorf("line %d: unterminated raw string", line)
			}
			line += strings.Count(body[:end], "\n")
			i += 1 + hashes + 1 + end + len(closing) - 1
		case c == '"':
			start := line
			for i++; i < len(content) && content[i] != '"'; i++ {
				switch content[i] {
				case '\\':
					i++
				case '\n':
					line++
				}
			}
			if i >= len(content) {
				return fmt.Errorf("line %d: unterminated string", start)
			}
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return fmt.Errorf("line %d: unexpected '}'", line)
			}
		}
	}
	if depth > 0 {
		return fmt.Errorf("line %d: %d unclosed block(s)", line, depth)
	}
	return nil
}

// rawStringStart returns the number of '#' opening a raw string at s, or -1
func rawStringStart(s string) int {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n < len(s) && s[n] == '"' {
		return n
	}
	return -1
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both the inline form (exclude "a" "b") and the
// block form (exclude { "a"; "b" })
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, child := range n.Children {
		if s, ok := firstStringArg(child); ok {
			out = append(out, s)
		} else if child.Name != nil {
			if s, ok := child.Name.Value.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	numStr := s
	for _, unit := range []struct {
		suffix string
		factor int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.factor
			numStr = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			break
		}
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
