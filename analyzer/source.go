package analyzer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DumpSource is anything that can supply a dump to analyze.
type DumpSource interface {
	Title() string
	Content() (string, error)
}

// TextSource is an in-memory dump.
type TextSource struct {
	Name string
	Text string
}

func (s TextSource) Title() string {
	return s.Name
}

func (s TextSource) Content() (string, error) {
	return s.Text, nil
}

// FileSource reads a dump from a file, or from Stdin when Path is "-".
type FileSource struct {
	Path  string
	Name  string    // overrides the title derived from Path
	Stdin io.Reader // defaults to os.Stdin
}

func (s FileSource) Title() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Path == "" || s.Path == "-" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
}

func (s FileSource) Content() (string, error) {
	if s.Path == "" || s.Path == "-" {
		in := s.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read dump from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read dump file: %w", err)
	}
	return string(data), nil
}
