// Package upload builds storage paths for user-uploaded files.
//
// File names are never taken from the client. Each upload gets a fresh random
// id so two users uploading "photo.jpg" cannot overwrite each other, and only
// the original extension is kept.
package upload

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// RecipeImageDir is the directory recipe images are stored under.
const RecipeImageDir = "/uploads/recipe"

// PathGenerator builds upload paths. NewID is called once per path; tests
// swap it for a fixed value instead of patching a package-level generator.
type PathGenerator struct {
	NewID func() string
}

// NewPathGenerator returns a PathGenerator backed by random (v4) UUIDs.
func NewPathGenerator() PathGenerator {
	return PathGenerator{NewID: uuid.NewString}
}

// RecipeImagePath returns "/uploads/recipe/{id}.{ext}" where ext is the text
// after the last "." in filename. A filename with no "." is used whole as the
// extension.
func (g PathGenerator) RecipeImagePath(filename string) string {
	return path.Join(RecipeImageDir, g.NewID()+"."+Ext(filename))
}

// RecipeImageFilePath generates a recipe image path with the default
// generator. The instance is accepted for callers that build paths from a
// record, but it does not influence the result.
func RecipeImageFilePath(_ any, filename string) string {
	return NewPathGenerator().RecipeImagePath(filename)
}

// Ext returns the extension of filename without the dot. Any directory part
// of filename is dropped first so the extension can never contain a separator.
func Ext(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if i := strings.LastIndexByte(filename, '.'); i >= 0 {
		return filename[i+1:]
	}
	return filename
}
