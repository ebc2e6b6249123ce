// Package spec loads workflow parameter schemas from YAML, Markdown front
// matter, HCL and JSON(C) files into validated definition sets.
package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultFilenames are the schema files looked for when no file is given
var DefaultFilenames = []string{
	"paramflow.yml",
	"paramflow.yaml",
	".paramflow/workflow.yml",
	"workflow.md",
	"paramflow.hcl",
}

// Supported formats
const (
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHCL      = "hcl"
	FormatJSON     = "json"
)

// CacheEntry represents a cached document with metadata
type CacheEntry struct {
	Document *Document
	ModTime  time.Time
}

// Loader finds, decodes and validates schema files
type Loader struct {
	baseDir string
	cache   sync.Map // *CacheEntry by file path
}

// NewLoader creates a loader resolving relative paths against baseDir
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir}
}

// Load loads a schema file. An empty filename tries DefaultFilenames in
// order. Documents are cached until the file's modification time changes.
func (l *Loader) Load(filename string) (*Document, error) {
	filePath, err := l.Find(filename)
	if err != nil {
		return nil, err
	}

	if cached, valid := l.getCached(filePath); valid {
		return cached, nil
	}

	format, err := FormatOf(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", filePath, err)
	}

	doc, err := Decode(data, format, filePath)
	if err != nil {
		return nil, err
	}
	doc.Path = filePath

	l.store(filePath, doc)
	return doc, nil
}

// Find resolves filename to an existing schema path
func (l *Loader) Find(filename string) (string, error) {
	if filename != "" {
		path := filename
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.baseDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("schema file '%s' not found", filename)
		}
		return path, nil
	}

	for _, name := range DefaultFilenames {
		candidate := filepath.Join(l.baseDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no paramflow schema found (tried: %s)\nUse --file to specify location", strings.Join(DefaultFilenames, ", "))
}

// FormatOf picks the format from the file extension
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".hcl":
		return FormatHCL, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported schema file extension '%s' (use .yml, .yaml, .md, .hcl, .json or .jsonc)", filepath.Ext(path))
	}
}

// Decode parses data in the given format and builds the definition set.
// filename is only used in messages.
func Decode(data []byte, format, filename string) (*Document, error) {
	var (
		raw  *rawDocument
		body string
		err  error
	)

	switch format {
	case FormatYAML:
		raw, err = decodeYAML(data)
	case FormatMarkdown:
		raw, body, err = decodeMarkdown(data)
	case FormatHCL:
		raw, err = decodeHCL(data, filename)
	case FormatJSON:
		raw, err = decodeJSON(data)
	default:
		err = fmt.Errorf("unsupported format '%s'", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	doc, err := raw.build()
	if err != nil {
		return nil, err
	}
	doc.Format = format
	doc.Body = body
	return doc, nil
}

// getCached retrieves a cached document if the file is unchanged
func (l *Loader) getCached(filePath string) (*Document, bool) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}

	if cached, ok := l.cache.Load(filePath); ok {
		entry := cached.(*CacheEntry)
		if entry.ModTime.Equal(info.ModTime()) {
			return entry.Document, true
		}
		l.cache.Delete(filePath)
	}
	return nil, false
}

func (l *Loader) store(filePath string, doc *Document) {
	info, err := os.Stat(filePath)
	if err != nil {
		return
	}
	l.cache.Store(filePath, &CacheEntry{Document: doc, ModTime: info.ModTime()})
}
