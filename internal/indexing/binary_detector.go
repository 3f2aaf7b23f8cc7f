// Binary file detection for early rejection of non-text files, so the
// analyzers never see image or assembly bytes as source text.
package indexing

import (
	"bytes"
	"path/filepath"
	"strings"
)

// binarySniffLen is how much of a file the content check looks at
const binarySniffLen = 512

// BinaryDetector decides whether a file is binary from its extension or its first bytes
type BinaryDetector struct {
	extensions map[string]struct{}
	signatures [][]byte
}

// NewBinaryDetector creates a detector covering the formats found in .NET
// and web repositories
func NewBinaryDetector() *BinaryDetector {
	exts := []string{
		// build output
		".dll", ".exe", ".pdb", ".so", ".dylib", ".a", ".o", ".obj", ".bin", ".nupkg", ".snupkg",
		".class", ".pyc",
		// images and fonts
		".png", ".jpg", ".jpeg", ".gif", ".bmp", ".ico", ".webp", ".tif", ".tiff",
		".woff", ".woff2", ".ttf", ".otf", ".eot",
		// archives
		".zip", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar", ".tar", ".jar",
		// documents and media
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
		".mp3", ".mp4", ".wav", ".avi", ".mov",
		// databases
		".db", ".sqlite", ".sqlite3", ".mdf", ".ldf",
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[e] = struct{}{}
	}

	return &BinaryDetector{
		extensions: set,
		signatures: [][]byte{
			{0x1F, 0x8B},             // gzip
			{0x50, 0x4B, 0x03, 0x04}, // zip, nupkg, docx
			{0x50, 0x4B, 0x05, 0x06}, // empty zip
			{0x89, 0x50, 0x4E, 0x47}, // png
			{0xFF, 0xD8, 0xFF},       // jpeg
			{0x47, 0x49, 0x46, 0x38}, // gif
			{0x25, 0x50, 0x44, 0x46}, // pdf
			{0x7F, 0x45, 0x4C, 0x46}, // elf
			{0x4D, 0x5A},             // PE (.dll, .exe)
			{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o, java class
			{0x77, 0x4F, 0x46, 0x46}, // woff
			{0x77, 0x4F, 0x46, 0x32}, // woff2
		},
	}
}

// IsBinaryByExtension checks the lower-cased extension against known binary formats
func (bd *BinaryDetector) IsBinaryByExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := bd.extensions[ext]
	return ok
}

// IsBinaryContent inspects the first bytes: known magic numbers, any NUL
// byte, or more than 30% control characters mark the content as binary.
// UTF-8 text, including a byte order mark, is never binary.
func (bd *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
	}

	for _, sig := range bd.signatures {
		if bytes.HasPrefix(sample, sig) {
			return true
		}
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control > len(sample)*30/100
}

// IsBinary combines the extension and content checks
func (bd *BinaryDetector) IsBinary(path string, content []byte) bool {
	return bd.IsBinaryByExtension(path) || bd.IsBinaryContent(content)
}
