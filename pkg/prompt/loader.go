package prompt

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

//go:embed templates/*.st
var embedded embed.FS

// Loader reads templates from an override directory first and falls back
// to the embedded defaults. Nothing is cached, so edits to override files
// apply to the next call.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a Loader. An empty dir uses only the embedded templates.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{
		dir:    dir,
		logger: logger.With("component", "prompt_loader"),
	}
}

// Dir returns the override directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Load returns the named template.
func (l *Loader) Load(name string) (*Template, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: invalid name %q", ErrTemplateNotFound, name)
	}

	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, name))
		if err == nil {
			l.logger.Debug("loaded template override", "name", name, "dir", l.dir)
			return New(name, string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return New(name, string(data)), nil
}

// Render loads and renders the named template.
func (l *Loader) Render(name string, vars map[string]string) (string, error) {
	t, err := l.Load(name)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

// Names lists the embedded template names.
func Names() []string {
	entries, _ := embedded.ReadDir("templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Watch logs every change to template files in the override directory
// until ctx is done. onChange, when non-nil, receives the changed
// template name.
func (l *Loader) Watch(ctx context.Context, onChange func(name string)) error {
	if l.dir == "" {
		return errors.New("no template directory to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating template watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching template dir: %w", err)
	}

	l.logger.Info("watching prompt templates", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".st" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			name := filepath.Base(event.Name)
			l.logger.Info("prompt template changed", "name", name, "op", event.Op.String())
			if onChange != nil {
				onChange(name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("template watcher error: %w", err)
		}
	}
}
