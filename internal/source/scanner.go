package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks the Claude projects directory and discovers transcript
// files. Transcripts live one level down (projects/<dir>/<session>.jsonl);
// files named agent-*.jsonl are subagent transcripts and are skipped, as
// is anything nested deeper.
func ScanDir(projectsDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(projectsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, "agent-") {
			return nil
		}

		rel, _ := filepath.Rel(projectsDir, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) != 2 {
			return nil
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			RelPath: rel,
		})
		return nil
	})

	return files, err
}

// CountProjects returns the number of unique project directories in a set
// of discovered files.
func CountProjects(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		dir := strings.SplitN(f.RelPath, string(filepath.Separator), 2)[0]
		seen[dir] = struct{}{}
	}
	return len(seen)
}
