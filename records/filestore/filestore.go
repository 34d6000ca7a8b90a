// Package filestore keeps each record as a JSON file under
// <dir>/<collection>/<key>.json. Names are path-escaped so any key is safe.
package filestore

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
)

const ext = ".json"

var _ records.Store = (*Store)(nil)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return &Store{dir: dir}, nil
}

// Create writes to a temp file and links it into place, so the record
// appears complete or not at all and an existing file is never replaced.
func (s *Store) Create(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	dir := s.collectionDir(collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	tmp, err := writeTemp(dir, value)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, s.path(collection, key)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return apperrors.Wrapf(apperrors.ErrAlreadyExists, "%s/%s", collection, key)
		}
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	data, err := os.ReadFile(s.path(collection, key))
	if err != nil {
		return nil, mapErr(err, collection, key)
	}
	return data, nil
}

func (s *Store) Update(ctx context.Context, collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	target := s.path(collection, key)
	if _, err := os.Stat(target); err != nil {
		return mapErr(err, collection, key)
	}
	tmp, err := writeTemp(s.collectionDir(collection), value)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if err := os.Remove(s.path(collection, key)); err != nil {
		return mapErr(err, collection, key)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	entries, err := os.ReadDir(s.collectionDir(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) collectionDir(collection string) string {
	return filepath.Join(s.dir, url.PathEscape(collection))
}

func (s *Store) path(collection, key string) string {
	return filepath.Join(s.collectionDir(collection), escapeKey(key)+ext)
}

// escapeKey also escapes a leading dot so keys never collide with temp files.
func escapeKey(key string) string {
	escaped := url.PathEscape(key)
	if strings.HasPrefix(escaped, ".") {
		escaped = "%2E" + escaped[1:]
	}
	return escaped
}

func writeTemp(dir string, value []byte) (string, error) {
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrStore, err)
	}
	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", apperrors.Wrap(apperrors.ErrStore, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", apperrors.Wrap(apperrors.ErrStore, err)
	}
	return f.Name(), nil
}

func mapErr(err error, collection, key string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return apperrors.Wrap(apperrors.ErrStore, err)
}
