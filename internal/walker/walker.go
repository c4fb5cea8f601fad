package walker

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a discovered note file.
type FileInfo struct {
	// Path is the file path as reached from the walk root, so it is
	// absolute only when the root is.
	Path    string
	RelPath string
	Size    int64
}

// Walk traverses the directory tree rooted at root and sends every
// non-directory entry whose extension is in allowedExts on the returned
// channel. Extensions are given without the dot and match case-sensitively.
//
// A root that is a symlink is resolved before walking; reported paths still
// start with root as given. Entries that cannot be read are skipped and the
// walk continues. The error channel receives at most one value and is closed
// once the walk finishes.
func Walk(root string, allowedExts map[string]bool) (<-chan FileInfo, <-chan error) {
	files := make(chan FileInfo, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		walkRoot := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			walkRoot = resolved
		}

		err := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip errors, keep walking
			}
			if d.IsDir() {
				return nil
			}
			if !allowedExts[extension(d.Name())] {
				return nil
			}

			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}
			relPath, err := filepath.Rel(walkRoot, path)
			if err != nil {
				return nil
			}
			files <- FileInfo{
				Path:    filepath.Join(root, relPath),
				RelPath: filepath.ToSlash(relPath),
				Size:    size,
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return files, errs
}

// extension returns the name's extension without the dot. A name that is
// nothing but a dot-prefixed word (".org") has no extension.
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
