// Package filekv stores every key in a single JSON document on disk.
package filekv

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/365cent/grade-tracker/storage/kv"
)

type Medium struct {
	mu   sync.Mutex
	path string
}

var _ kv.Medium = (*Medium)(nil)

// Open returns a Medium backed by the file at path, creating its directory if needed.
// The file itself is created on the first Put.
func Open(path string) (*Medium, error) {
	if path == "" {
		return nil, errors.New("filekv: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}
	return &Medium{path: path}, nil
}

func (m *Medium) Path() string { return m.path }

func (m *Medium) load() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, errors.Wrap(err, "reading data file")
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding data file %s", m.path)
	}
	return doc, nil
}

func (m *Medium) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return nil, err
	}
	res := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if val, ok := doc[key]; ok {
			res[key] = []byte(val)
		}
	}
	return res, nil
}

// Put rewrites the whole document to a temporary file then renames it over the data file.
func (m *Medium) Put(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := m.load()
	if err != nil {
		return err
	}
	for key, val := range entries {
		if !json.Valid(val) {
			return errors.Errorf("filekv: value of %q is not valid JSON", key)
		}
		doc[key] = append(json.RawMessage(nil), val...)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding data file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), m.path); err != nil {
		return errors.Wrap(err, "replacing data file")
	}
	return nil
}

func (m *Medium) Close() error { return nil }
