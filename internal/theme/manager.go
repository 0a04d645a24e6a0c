package theme

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Manager loads themes from disk.  The Registry caches what it returns.
type Manager struct {
	BaseDir string // "themes" relative to the repo root, or absolute
}

// Load parses every template under <BaseDir>/<name>/templates and returns
// the finished Theme.  Parsing happens with a placeholder asset helper;
// the real one needs the Theme value, so it is bound afterwards.
func (m *Manager) Load(name string) (*Theme, error) {
	root := filepath.Join(m.BaseDir, name)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("theme %s not found at %s", name, root)
	}

	tpl := template.New("").Funcs(template.FuncMap{
		"asset": func(s string) string { return s },
	})

	files, err := CollectHTML(filepath.Join(root, "templates"))
	if err != nil {
		return nil, fmt.Errorf("scan theme %s: %w", name, err)
	}
	if len(files) > 0 {
		if _, err := tpl.ParseFiles(files...); err != nil {
			return nil, fmt.Errorf("parse theme %s: %w", name, err)
		}
	}

	th := New(name, root, tpl)
	tpl.Funcs(template.FuncMap{"asset": th.AssetFunc})
	return th, nil
}
