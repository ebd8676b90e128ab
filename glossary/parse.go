package glossary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Format is the serialisation of a glossary document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// document is the on-disk shape of a glossary.
type document struct {
	Version    string         `json:"version" yaml:"version"`
	Categories []CategoryInfo `json:"categories" yaml:"categories"`
	Entries    []Entry        `json:"entries" yaml:"entries"`
}

// FormatFromPath picks the document format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported glossary file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// Parse decodes a glossary document and validates it with New.
// Input that is not valid UTF-8 is decoded as ISO-8859-1.
func Parse(data []byte, format Format) (*Glossary, error) {
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode glossary as ISO-8859-1: %w", err)
		}
		data = decoded
	}

	var doc document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode JSON glossary: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML glossary: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported glossary format %q", format)
	}

	return New(doc.Version, doc.Entries, doc.Categories)
}
