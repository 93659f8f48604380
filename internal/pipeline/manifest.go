package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fileStamp identifies one scanned transcript's last-seen state.
type fileStamp struct {
	MtimeNs   int64 `json:"mtime_ns"`
	SizeBytes int64 `json:"size_bytes"`
}

// manifest records which transcripts were parsed and at what mtime/size,
// so an unchanged file is never reparsed. Losing it is harmless: the next
// refresh reparses everything and the ledger upserts converge.
type manifest struct {
	Files map[string]fileStamp `json:"files"`
}

func loadManifest(path string) manifest {
	m := manifest{Files: make(map[string]fileStamp)}
	if path == "" {
		return m
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil || m.Files == nil {
		m.Files = make(map[string]fileStamp)
	}
	return m
}

func saveManifest(path string, m manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cclock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "cclock")
}

// ManifestPath returns the full path to the scan manifest.
func ManifestPath() string {
	return filepath.Join(CacheDir(), "scan.json")
}
