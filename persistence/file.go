// Package persistence provides Saver/Loader implementations for
// hsm.Snapshot: plain files (JSON, YAML), and embedded/networked
// databases (SQLite, Postgres). Every implementation stores current
// state and history under one on-disk record but exposes them through
// the two ordered operations the Saver/Loader contract requires.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/latticehsm/hsm"
)

type fileRecord struct {
	Current *string             `json:"current" yaml:"current"`
	History []hsm.HistoryRecord `json:"history" yaml:"history"`
}

// JSONFile is a file-based Saver/Loader using one JSON file per key.
type JSONFile struct {
	dir string
}

// NewJSONFile creates a JSONFile persister rooted at dir, creating it if
// necessary.
func NewJSONFile(dir string) (*JSONFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONFile{dir: dir}, nil
}

func (p *JSONFile) path(key string) string {
	return filepath.Join(p.dir, key+".json")
}

func (p *JSONFile) read(key string) (fileRecord, error) {
	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileRecord{}, hsm.ErrSnapshotNotFound
		}
		return fileRecord{}, fmt.Errorf("read %s: %w", p.path(key), err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return rec, nil
}

func (p *JSONFile) write(key string, rec fileRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(p.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.path(key), err)
	}
	return nil
}

// SaveCurrentState persists current, creating key's record if absent.
func (p *JSONFile) SaveCurrentState(ctx context.Context, key string, current string) error {
	rec, err := p.read(key)
	if err != nil && !errors.Is(err, hsm.ErrSnapshotNotFound) {
		return err
	}
	c := current
	rec.Current = &c
	return p.write(key, rec)
}

// SaveHistoryStates persists history. Called only after
// SaveCurrentState has already created key's record.
func (p *JSONFile) SaveHistoryStates(ctx context.Context, key string, history []hsm.HistoryRecord) error {
	rec, err := p.read(key)
	if err != nil {
		return err
	}
	rec.History = history
	return p.write(key, rec)
}

func (p *JSONFile) LoadCurrentState(ctx context.Context, key string) (string, error) {
	rec, err := p.read(key)
	if err != nil {
		return "", err
	}
	if rec.Current == nil {
		return "", nil
	}
	return *rec.Current, nil
}

func (p *JSONFile) LoadHistoryStates(ctx context.Context, key string) ([]hsm.HistoryRecord, error) {
	rec, err := p.read(key)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}

// YAMLFile is a file-based Saver/Loader using one YAML file per key.
type YAMLFile struct {
	dir string
}

// NewYAMLFile creates a YAMLFile persister rooted at dir, creating it if
// necessary.
func NewYAMLFile(dir string) (*YAMLFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLFile{dir: dir}, nil
}

func (p *YAMLFile) path(key string) string {
	return filepath.Join(p.dir, key+".yaml")
}

func (p *YAMLFile) read(key string) (fileRecord, error) {
	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileRecord{}, hsm.ErrSnapshotNotFound
		}
		return fileRecord{}, fmt.Errorf("read %s: %w", p.path(key), err)
	}
	var rec fileRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return rec, nil
}

func (p *YAMLFile) write(key string, rec fileRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(p.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.path(key), err)
	}
	return nil
}

func (p *YAMLFile) SaveCurrentState(ctx context.Context, key string, current string) error {
	rec, err := p.read(key)
	if err != nil && !errors.Is(err, hsm.ErrSnapshotNotFound) {
		return err
	}
	c := current
	rec.Current = &c
	return p.write(key, rec)
}

func (p *YAMLFile) SaveHistoryStates(ctx context.Context, key string, history []hsm.HistoryRecord) error {
	rec, err := p.read(key)
	if err != nil {
		return err
	}
	rec.History = history
	return p.write(key, rec)
}

func (p *YAMLFile) LoadCurrentState(ctx context.Context, key string) (string, error) {
	rec, err := p.read(key)
	if err != nil {
		return "", err
	}
	if rec.Current == nil {
		return "", nil
	}
	return *rec.Current, nil
}

func (p *YAMLFile) LoadHistoryStates(ctx context.Context, key string) ([]hsm.HistoryRecord, error) {
	rec, err := p.read(key)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}
