// Package scaffold creates the layout of a new detections repository.
package scaffold

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
)

//go:embed templates/*.txt
var templates embed.FS

// Directories created by Init.
var Directories = []string{"customers", "rules"}

// files maps target names to their embedded template.
var files = []struct {
	Target   string
	Template string
}{
	{Target: ".env.example", Template: "templates/env-example.txt"},
	{Target: "README.md", Template: "templates/readme.txt"},
	{Target: ".gitignore", Template: "templates/gitignore.txt"},
}

// Result reports what Init created and what already existed.
type Result struct {
	Root    string
	Created []string
	Skipped []string
}

// Init lays out a detections repository at root. Existing files and
// directories are left untouched and reported as skipped.
func Init(root string) (*Result, error) {
	log := logging.GetLogger("scaffold")
	log.Debug().Str("root", root).Msg("Initializing repository")

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create repository root").
			WithDetail("path", root)
	}

	result := &Result{Root: root}

	for _, dir := range Directories {
		path := filepath.Join(root, dir)
		if _, err := os.Stat(path); err == nil {
			result.Skipped = append(result.Skipped, dir+"/")
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create directory").
				WithDetail("path", path)
		}
		keep := filepath.Join(path, ".gitkeep")
		if err := os.WriteFile(keep, nil, 0644); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write file").
				WithDetail("path", keep)
		}
		result.Created = append(result.Created, dir+"/")
	}

	for _, f := range files {
		path := filepath.Join(root, f.Target)
		if _, err := os.Stat(path); err == nil {
			result.Skipped = append(result.Skipped, f.Target)
			continue
		}
		content, err := templates.ReadFile(f.Template)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "missing template %s", f.Template)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return nil, errors.Wrap(err, errors.ErrFileWrite, "cannot write file").
				WithDetail("path", path)
		}
		result.Created = append(result.Created, f.Target)
	}

	log.Info().
		Int("created", len(result.Created)).
		Int("skipped", len(result.Skipped)).
		Msg("Repository initialized")

	return result, nil
}
