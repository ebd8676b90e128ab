package glossary

import (
	_ "embed"
)

// Sources: NIH MedlinePlus, American Heart Association, Medtronic patient resources.
//
//go:embed data/cardiac.json
var defaultDocument []byte

// Default returns the built-in cardiac device glossary.
func Default() (*Glossary, error) {
	return Parse(defaultDocument, FormatJSON)
}

// DefaultDocument returns a copy of the raw built-in glossary document, useful
// as a starting point for a custom GLOSSARY_PATH file.
func DefaultDocument() []byte {
	out := make([]byte, len(defaultDocument))
	copy(out, defaultDocument)
	return out
}
