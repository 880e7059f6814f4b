// Package output handles file naming and writing for texpipe outputs.
// For a single source the filename is derived from the source itself
// (exam.json -> exam.html, https://host/a/b.json -> host_a_b.html).
// With --all, outputs mirror the source layout under the output directory.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// WriteOnly writes output for a single source under a flat filename.
func (w *Writer) WriteOnly(source string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, filenameFromSource(source)+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// WriteAll writes output for one of many discovered sources, keeping the
// source's position relative to root.
// Example: root ./exams, source ./exams/term1/quiz.json -> term1/quiz.ext
func (w *Writer) WriteAll(root, source string, data []byte, ext string) (string, error) {
	rel, err := relativePath(root, source)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.OutputDir, rel+ext)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// relativePath returns source's path below root without its extension.
func relativePath(root, source string) (string, error) {
	var p string
	if parsed, err := url.Parse(source); err == nil && parsed.Host != "" {
		p = strings.Trim(parsed.Path, "/")
	} else {
		rel, err := filepath.Rel(root, source)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(source)
		}
		p = filepath.ToSlash(rel)
	}
	p = strings.TrimSuffix(p, filepath.Ext(p))
	if p == "" || p == "." {
		p = "index"
	}

	parts := strings.Split(p, "/")
	for i, seg := range parts {
		parts[i] = sanitize(seg)
	}
	return filepath.Join(parts...), nil
}

// filenameFromSource converts a path or URL into a flat filename.
// Example: https://example.com/exams/quiz.json -> example_com_exams_quiz
func filenameFromSource(source string) string {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		base := filepath.Base(source)
		return sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	parts := []string{sanitize(parsed.Host)}
	path := strings.Trim(parsed.Path, "/")
	path = strings.TrimSuffix(path, filepath.Ext(path))
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			parts = append(parts, sanitize(seg))
		}
	}
	return strings.Join(parts, "_")
}

// sanitize replaces non-alphanumeric characters with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
