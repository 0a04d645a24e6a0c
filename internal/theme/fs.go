// fs.go collects template files for the Manager.  The standard glob
// syntax has no "**", so a recursive walk gathers every .html file under
// a theme's templates directory.
package theme

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// CollectHTML returns every *.html path under rootDir, recursively, in
// slash form so the list feeds straight into template.ParseFiles.
func CollectHTML(rootDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".html") {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
