package indexing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryDetector_IsBinaryByExtension(t *testing.T) {
	bd := NewBinaryDetector()

	tests := []struct {
		path   string
		binary bool
	}{
		{"bin/Debug/Shop.dll", true},
		{"bin/Debug/Shop.pdb", true},
		{"packages/Shop.1.0.0.nupkg", true},
		{"wwwroot/fonts/site.woff2", true},
		{"wwwroot/img/logo.png", true},
		{"App_Data/shop.sqlite", true},

		{"src/Program.cs", false},
		{"src/Shop.csproj", false},
		{"wwwroot/img/logo.svg", false},
		{"wwwroot/js/site.min.js", false},
		{"appsettings.json", false},
		{"Makefile", false},

		{"wwwroot/img/LOGO.PNG", true},
		{"bin/Shop.Dll", true},
		{"src/PROGRAM.CS", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.binary, bd.IsBinaryByExtension(tt.path))
		})
	}
}

func TestBinaryDetector_IsBinaryContent(t *testing.T) {
	bd := NewBinaryDetector()

	tests := []struct {
		name    string
		content []byte
		binary  bool
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, true},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, true},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04}, true},
		{"pdf", []byte("%PDF-1.7"), true},
		{"portable executable", []byte{0x4D, 0x5A, 0x90, 0x00}, true},
		{"elf", []byte{0x7F, 0x45, 0x4C, 0x46, 0x02}, true},
		{"nul bytes", append([]byte("hello"), make([]byte, 8)...), true},
		{"control characters", bytes.Repeat([]byte{0x01, 0x02, 'a'}, 20), true},

		{"csharp source", []byte("namespace Shop;\n\npublic class Cart\n{\n}\n"), false},
		{"json", []byte(`{"AnalysisSettings": {}}`), false},
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("using System;")...), false},
		{"unicode text", []byte("Grüße, 世界 🚀"), false},
		{"empty", []byte{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.binary, bd.IsBinaryContent(tt.content))
		})
	}
}

func TestBinaryDetector_OnlySniffsPrefix(t *testing.T) {
	bd := NewBinaryDetector()
	content := append(bytes.Repeat([]byte("a"), binarySniffLen), 0x00)
	assert.False(t, bd.IsBinaryContent(content))
}

func TestBinaryDetector_IsBinary(t *testing.T) {
	bd := NewBinaryDetector()
	assert.True(t, bd.IsBinary("logo.png", []byte("text with png extension")))
	assert.True(t, bd.IsBinary("noext", []byte{0x50, 0x4B, 0x03, 0x04}))
	assert.False(t, bd.IsBinary("Program.cs", []byte("class Program {}")))
}
