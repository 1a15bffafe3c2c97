package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	sessionFile  = "session.json"
	metadataFile = "metadata.json"
	finalVideo   = "short_video.mp4"
)

// Store manages the projects root: one directory per session, holding the
// session record, per-scene assets and the assembled video. It is the only
// persisted state, so a session survives process restarts.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("create projects directory: %w", err)
	}
	return nil
}

func (s *Store) Project(id string) *Project {
	return &Project{dir: filepath.Join(s.root, id)}
}

// List returns the session IDs present under the projects root, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), sessionFile)); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}

	sort.Strings(ids)
	return ids, nil
}

// Project is one session's folder.
type Project struct {
	dir string
}

func (p *Project) Dir() string           { return p.dir }
func (p *Project) SessionPath() string   { return filepath.Join(p.dir, sessionFile) }
func (p *Project) MetadataPath() string  { return filepath.Join(p.dir, metadataFile) }
func (p *Project) VoiceoverDir() string  { return filepath.Join(p.dir, "voiceovers") }
func (p *Project) ImageDir() string      { return filepath.Join(p.dir, "images") }
func (p *Project) VideoDir() string      { return filepath.Join(p.dir, "videos") }
func (p *Project) AssemblyDir() string   { return filepath.Join(p.dir, "assembled") }
func (p *Project) FinalVideoPath() string { return filepath.Join(p.AssemblyDir(), finalVideo) }

func (p *Project) EnsureDirs() error {
	dirs := []string{p.dir, p.VoiceoverDir(), p.ImageDir(), p.VideoDir(), p.AssemblyDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create project directory %s: %w", dir, err)
		}
	}
	return nil
}

func (p *Project) Exists() bool {
	_, err := os.Stat(p.SessionPath())
	return err == nil
}

// WriteJSON persists a record atomically: write aside, then rename.
func (p *Project) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (p *Project) ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
