package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"resource2code/model"
)

// SaveFile writes content to path, creating parent directories as needed.
// It reports true when the file was created and false when it replaced an
// existing file.
func SaveFile(path, content string) (bool, error) {
	if strings.TrimSpace(path) == "" {
		return false, errors.New("file path is required")
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("overwrite file %s: %w", path, err)
		}
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return false, fmt.Errorf("create directory %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("create file %s: %w", path, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

func FileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// MergePaths joins sub onto root, dropping the leading components of sub
// that already close root. MergePaths("/ws/src/main", "src/main/App.java")
// is "/ws/src/main/App.java".
func MergePaths(root, sub string) string {
	rootParts := normalComponents(root)
	subParts := normalComponents(sub)
	n := commonOverlap(rootParts, subParts)
	return filepath.Join(append([]string{root}, subParts[n:]...)...)
}

func normalComponents(path string) []string {
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	parts := []string{}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		switch part {
		case "", ".", "..":
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// commonOverlap is the length of the longest prefix of sub that is also a
// suffix of root.
func commonOverlap(root, sub []string) int {
	for n := min(len(root), len(sub)); n > 0; n-- {
		if equalParts(root[len(root)-n:], sub[:n]) {
			return n
		}
	}
	return 0
}

func equalParts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Tree returns the directory tree rooted at path as a single-element slice.
func Tree(path string) ([]model.FileNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("path does not exist: %s", path)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	root, err := walk(abs, nil, true)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	return []model.FileNode{root}, nil
}

// walk builds the node for path. Children come from their directory
// entries, so a dangling symlink is a plain leaf and a symlinked directory
// is shown as a folder without being followed.
func walk(path string, parent *string, isDir bool) (model.FileNode, error) {
	node := model.FileNode{
		ID:       path,
		Label:    filepath.Base(path),
		IsFolder: isDir,
		Children: []model.FileNode{},
		ParentID: parent,
	}
	if !isDir {
		return node, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return model.FileNode{}, err
	}
	self := path
	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		if entry.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(childPath)
			node.Children = append(node.Children, model.FileNode{
				ID:       childPath,
				Label:    entry.Name(),
				IsFolder: err == nil && info.IsDir(),
				Children: []model.FileNode{},
				ParentID: &self,
			})
			continue
		}
		child, err := walk(childPath, &self, entry.IsDir())
		if err != nil {
			return model.FileNode{}, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// DirectoryOutline lists every directory below root, one "/rel/path" per
// line inside a fenced block. It returns "" when root has no subdirectories
// or cannot be read.
func DirectoryOutline(root string) string {
	var lines []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		lines = append(lines, "/"+filepath.ToSlash(rel))
		return nil
	})
	if len(lines) == 0 {
		return ""
	}
	return "```\n" + strings.Join(lines, "\n") + "\n```\n"
}
