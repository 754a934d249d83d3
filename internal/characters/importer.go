// Package characters imports character definition files into the character
// repository.
package characters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nfrund/charroom/internal/domain"
	"github.com/spf13/afero"
)

// Definition is the on-disk form of a character.
type Definition struct {
	Name         string  `json:"name"`
	SystemPrompt string  `json:"systemPrompt"`
	Description  string  `json:"description"`
	Greeting     string  `json:"greeting"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
}

func (d Definition) character() domain.Character {
	return domain.Character{
		Name:         strings.TrimSpace(d.Name),
		SystemPrompt: strings.TrimSpace(d.SystemPrompt),
		Description:  strings.TrimSpace(d.Description),
		Greeting:     d.Greeting,
		Model:        strings.TrimSpace(d.Model),
		Temperature:  d.Temperature,
	}
}

// Result summarizes an import.
type Result struct {
	Created int
	Updated int
	// Failed holds one error per definition or file that was skipped.
	Failed []error
}

func (r *Result) merge(other Result) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Failed = append(r.Failed, other.Failed...)
}

// Err joins every failure, or returns nil.
func (r Result) Err() error {
	return errors.Join(r.Failed...)
}

// Importer reads definitions from a filesystem and upserts them by name.
type Importer struct {
	fs   afero.Fs
	repo domain.CharacterRepository
}

// NewImporter creates an importer reading from fs.
func NewImporter(fs afero.Fs, repo domain.CharacterRepository) *Importer {
	return &Importer{fs: fs, repo: repo}
}

// Parse decodes a single definition object or an array of them.
func Parse(data []byte) ([]Definition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &domain.ValidationError{Reason: "character file is empty"}
	}

	if trimmed[0] == '[' {
		var defs []Definition
		if err := json.Unmarshal(trimmed, &defs); err != nil {
			return nil, &domain.ValidationError{Reason: "malformed character list: " + err.Error()}
		}
		return defs, nil
	}

	var def Definition
	if err := json.Unmarshal(trimmed, &def); err != nil {
		return nil, &domain.ValidationError{Reason: "malformed character definition: " + err.Error()}
	}
	return []Definition{def}, nil
}

// ImportFile imports every definition in path. Invalid definitions are
// recorded in the result and do not stop the rest of the file. The error is
// non-nil only when the file cannot be read or parsed, or the repository
// fails.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	var res Result

	data, err := afero.ReadFile(im.fs, path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		c := def.character()
		if err := c.Validate(); err != nil {
			res.Failed = append(res.Failed, fmt.Errorf("%s[%d]: %w", path, i, err))
			continue
		}
		key := domain.CharacterNameKey(c.Name)
		if seen[key] {
			res.Failed = append(res.Failed, fmt.Errorf("%s[%d]: duplicate character name %q", path, i, c.Name))
			continue
		}
		seen[key] = true

		saved, created, err := im.repo.UpsertCharacterByName(ctx, c)
		if err != nil {
			return res, err
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
		slog.DebugContext(ctx, "Imported character", "character_id", saved.ID, "name", saved.Name, "created", created, "path", path)
	}
	return res, nil
}

// ImportPath imports a single file, or every .json file directly inside a
// directory in name order.
func (im *Importer) ImportPath(ctx context.Context, path string) (Result, error) {
	info, err := im.fs.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return im.ImportFile(ctx, path)
	}

	entries, err := afero.ReadDir(im.fs, path)
	if err != nil {
		return Result{}, fmt.Errorf("read dir %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsDefinitionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var total Result
	for _, name := range names {
		res, err := im.ImportFile(ctx, filepath.Join(path, name))
		total.merge(res)
		if err != nil {
			if errors.Is(err, domain.ErrPersistence) {
				return total, err
			}
			total.Failed = append(total.Failed, err)
		}
	}
	slog.InfoContext(ctx, "Character import finished", "path", path,
		"created", total.Created, "updated", total.Updated, "failed", len(total.Failed))
	return total, nil
}

// IsDefinitionFile reports whether name looks like a character definition.
func IsDefinitionFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}
