// Package seed loads users and categories from a JSONC document.
//
// The document looks like:
//
//	{
//	  // people who can lead projects, own issues and write comments
//	  "users": [{"id": "u-1", "name": "Jane Product"}],
//	  "categories": [{"name": "Marketing"}], // id is generated when omitted
//	}
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/joescharf/simplejira/internal/tracker"
)

// Data is the content of a seed document.
type Data struct {
	Users      []tracker.Ref `json:"users"`
	Categories []tracker.Ref `json:"categories"`
}

// Importer receives parsed seed data.
type Importer interface {
	ImportReferenceData(ctx context.Context, users, categories []tracker.Ref) error
}

// Parse reads a JSONC document. Comments and trailing commas are allowed.
func Parse(r io.Reader) (*Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed data: %w", err)
	}
	var d Data
	if err := json.Unmarshal(jsonc.ToJSON(raw), &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &d, nil
}

// LoadFile parses the file at path.
func LoadFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Apply imports d. Nothing is written if any entry is invalid.
func Apply(ctx context.Context, imp Importer, d *Data) error {
	return imp.ImportReferenceData(ctx, d.Users, d.Categories)
}
