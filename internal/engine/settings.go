package engine

import (
	"path"

	"github.com/hyperengineering/lexicon/internal/types"
)

// Settings carries the per-call configuration of every engine entry point.
// Paths are vault-relative and slash-separated.
type Settings struct {
	SortOrder      types.SortOrder
	MarkdownFolder string
	AssetsFolder   string
	DocumentName   string
	StoreFile      string
	DictionaryFile string

	// DictionaryOptional lets a sync run proceed without a dictionary file.
	DictionaryOptional bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SortOrder:      types.SortTimestamp,
		MarkdownFolder: "kindle-vocab",
		AssetsFolder:   "kindle-vocab/assets",
		DocumentName:   "My Vocabulary Builder.md",
		StoreFile:      "vocab.db",
		DictionaryFile: "dictionary.csv",
	}
}

// StorePath returns the vault path of the store image.
func (s Settings) StorePath() string {
	return path.Join(s.AssetsFolder, s.StoreFile)
}

// DictionaryPath returns the vault path of the dictionary file.
func (s Settings) DictionaryPath() string {
	return path.Join(s.AssetsFolder, s.DictionaryFile)
}

// DocumentPath returns the vault path of the rendered document.
func (s Settings) DocumentPath() string {
	return path.Join(s.MarkdownFolder, s.DocumentName)
}
