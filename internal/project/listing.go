// Package project - listing.go inventories the workspace for the API and
// CLI: which projects exist and what files each contains.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info summarizes one project in the workspace.
type Info struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	FileCount  int       `json:"file_count"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListProjects returns every project directory under root, newest first.
func ListProjects(root string) ([]Info, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read workspace %s: %w", root, err)
	}

	var infos []Info
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, e.Name())
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:       e.Name(),
			Title:      projectTitle(dir, e.Name()),
			FileCount:  countSourceFiles(dir),
			ModifiedAt: fi.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModifiedAt.After(infos[j].ModifiedAt)
	})
	return infos, nil
}

func projectTitle(dir, fallback string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return fallback
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Name == "" {
		return fallback
	}
	return pkg.Name
}

func countSourceFiles(dir string) int {
	count := 0
	_ = filepath.Walk(filepath.Join(dir, "src"), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".jsx") || strings.HasSuffix(path, ".css") {
			count++
		}
		return nil
	})
	return count
}

// importantFiles lead the file listing, in reading order for a human or a
// model trying to understand the project.
var importantFiles = []string{
	"src/App.jsx", "src/main.jsx", "src/index.css",
	"index.html", "package.json", "vite.config.js", "tailwind.config.js",
}

// FileEntry is one file in a project listing.
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Files returns the project's files with content: the important ones first
// in fixed order, then every component sorted by path.
func (p *Project) Files() []FileEntry {
	var out []FileEntry
	for _, rel := range importantFiles {
		if content := p.Content(rel); content != "" {
			out = append(out, FileEntry{Path: rel, Content: content})
		}
	}
	for _, rel := range p.Components() {
		if content := p.Content(rel); content != "" {
			out = append(out, FileEntry{Path: rel, Content: content})
		}
	}
	return out
}
