package navigation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/cmdk/pkg/log"
	"github.com/rubiojr/cmdk/pkg/sources/routes"
)

// File is the on-disk shape of an extra navigation file:
//
//	[[group]]
//	name = "Runbooks"
//
//	[[group.item]]
//	path = "/settings/:orgId/runbooks/"
//	title = "Runbooks"
//	access = ["org:write"]
type File struct {
	Groups []FileGroup `toml:"group"`
}

type FileGroup struct {
	Name  string     `toml:"name"`
	Items []FileItem `toml:"item"`
}

// FileItem is shown when the caller holds every listed access scope and
// every listed feature.
type FileItem struct {
	Path        string   `toml:"path"`
	Title       string   `toml:"title"`
	Description string   `toml:"description"`
	Access      []string `toml:"access"`
	Features    []string `toml:"features"`
}

// Parse decodes a navigation file into a definition.
func Parse(data []byte) (routes.Definition, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return routes.Definition{}, fmt.Errorf("parsing navigation file: %w", err)
	}

	groups := make([]routes.Group, 0, len(f.Groups))
	for gi, fg := range f.Groups {
		if fg.Name == "" {
			return routes.Definition{}, fmt.Errorf("group %d has no name", gi)
		}
		g := routes.Group{Name: fg.Name}
		for ii, fi := range fg.Items {
			if fi.Path == "" || fi.Title == "" {
				return routes.Definition{}, fmt.Errorf("group %q item %d needs a path and a title", fg.Name, ii)
			}
			g.Items = append(g.Items, routes.RouteItem{
				Path:        fi.Path,
				Title:       fi.Title,
				Description: fi.Description,
				Show:        requireAll(fi.Access, fi.Features),
			})
		}
		groups = append(groups, g)
	}
	return routes.Static(groups...), nil
}

func requireAll(access, features []string) func(routes.NavContext) bool {
	if len(access) == 0 && len(features) == 0 {
		return nil
	}
	return func(nc routes.NavContext) bool {
		for _, a := range access {
			if !nc.Access[a] {
				return false
			}
		}
		for _, f := range features {
			if !nc.Features[f] {
				return false
			}
		}
		return true
	}
}

// LoadFile reads and parses the navigation file at path.
func LoadFile(path string) (routes.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return routes.Definition{}, err
	}
	return Parse(data)
}

// Definitions returns the built-in navigation followed by the contents of
// path. An empty path or a missing file yields only the built-ins.
func Definitions(path string) ([]routes.Definition, error) {
	defs := Builtin()
	if path == "" {
		return defs, nil
	}
	extra, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defs, nil
	}
	if err != nil {
		return nil, err
	}
	return append(defs, extra), nil
}

// Watch calls fn with the fresh definitions every time the file at path
// changes, until ctx is done. Atomic replacements (rename over the file)
// are followed by re-adding the path to the watcher.
func Watch(ctx context.Context, path string, fn func([]routes.Definition)) error {
	logger := log.ForService("navigation")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnf("closing watcher: %v", err)
		}
	}()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(100 * time.Millisecond)
				if _, err := os.Stat(path); os.IsNotExist(err) {
					logger.Warnf("navigation file %s removed, keeping current routes", path)
					continue
				}
				if err := watcher.Add(path); err != nil {
					logger.Warnf("re-adding %s to watcher: %v", path, err)
				}
			}

			defs, err := Definitions(path)
			if err != nil {
				logger.Errorf("reloading navigation: %v", err)
				continue
			}
			logger.Infof("navigation file changed (%s), reloaded", event.Op)
			fn(defs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)
		}
	}
}
