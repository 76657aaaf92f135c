package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbxark/bureaubot/catalog"
	"github.com/tbxark/bureaubot/form"
)

// Store provides form field metadata, the reference catalog and blank PDF
// templates. Missing files never fail a lookup: Fields returns an empty list
// and Catalog an empty catalog.
type Store interface {
	Fields(ctx context.Context, formKey string) ([]form.Field, error)
	Catalog(ctx context.Context) (*catalog.Catalog, error)
	Template(formKey string) (string, bool)
}

// FileStore reads metadata from a data directory laid out as
//
//	{dir}/reference.txt
//	{dir}/EOIR/{key}_meta.json and {key}.pdf   for eoir_form* keys
//	{dir}/all/{key}_meta.json and {key}.pdf    for everything else
type FileStore struct {
	dir           string
	referencePath string
}

type FileStoreOption func(*FileStore)

// WithReferenceFile overrides the reference catalog path.
func WithReferenceFile(path string) FileStoreOption {
	return func(s *FileStore) {
		s.referencePath = path
	}
}

func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{dir: dir, referencePath: filepath.Join(dir, "reference.txt")}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *FileStore) formDir(formKey string) string {
	if strings.HasPrefix(formKey, "eoir_form") {
		return filepath.Join(s.dir, "EOIR")
	}
	return filepath.Join(s.dir, "all")
}

func (s *FileStore) Fields(ctx context.Context, formKey string) ([]form.Field, error) {
	if err := validKey(formKey); err != nil {
		return nil, err
	}
	path := filepath.Join(s.formDir(formKey), formKey+"_meta.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Field metadata not found", "form_key", formKey, "path", path)
			return []form.Field{}, nil
		}
		return nil, fmt.Errorf("read field metadata: %w", err)
	}
	fields, err := form.ParseFields(data)
	if err != nil {
		slog.Warn("Field metadata unreadable", "form_key", formKey, "error", err)
		return []form.Field{}, nil
	}
	slog.Debug("Loaded field metadata", "form_key", formKey, "fields", len(fields))
	return fields, nil
}

func (s *FileStore) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	f, err := os.Open(s.referencePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Error("Reference catalog not found", "path", s.referencePath)
			return catalog.New(), nil
		}
		return nil, fmt.Errorf("open reference catalog: %w", err)
	}
	defer f.Close()
	return catalog.Parse(f)
}

func (s *FileStore) Template(formKey string) (string, bool) {
	if validKey(formKey) != nil {
		return "", false
	}
	path := filepath.Join(s.formDir(formKey), formKey+".pdf")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func validKey(formKey string) error {
	if formKey == "" || strings.ContainsAny(formKey, `/\`) || strings.Contains(formKey, "..") {
		return fmt.Errorf("invalid form key %q", formKey)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
