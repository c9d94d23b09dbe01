package templates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/johnquangdev/acta-generator/internal/domain/entities"
	"github.com/johnquangdev/acta-generator/internal/infrastructure/storage"
)

const docxExt = ".docx"

// checkName accepts bare .docx file names only
func checkName(name string) error {
	if name == "" ||
		name != filepath.Base(name) ||
		strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") ||
		!strings.EqualFold(filepath.Ext(name), docxExt) {
		return fmt.Errorf("%w: %q", entities.ErrInvalidTemplate, name)
	}
	return nil
}

// isTemplate filters listings: .docx files without Word's "~$" lock files
func isTemplate(name string) bool {
	return strings.EqualFold(filepath.Ext(name), docxExt) &&
		!strings.HasPrefix(name, "~$") &&
		!strings.HasPrefix(name, ".")
}

// DirStore serves templates from a local directory
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir
func NewDirStore(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Open reads the named template
func (s *DirStore) Open(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return b, nil
}

// List returns the template names in the directory, sorted
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isTemplate(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ObjectStore is the subset of the object storage client templates need
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// MinIOStore serves templates from a bucket prefix
type MinIOStore struct {
	objects ObjectStore
	prefix  string
}

// NewMinIOStore creates a store reading keys under prefix, e.g. "templates/"
func NewMinIOStore(objects ObjectStore, prefix string) *MinIOStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &MinIOStore{objects: objects, prefix: prefix}
}

// Open downloads the named template
func (s *MinIOStore) Open(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	b, err := s.objects.Get(ctx, s.prefix+name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", entities.ErrTemplateNotFound, name)
		}
		return nil, err
	}
	return b, nil
}

// List returns the template names directly under the prefix, sorted
func (s *MinIOStore) List(ctx context.Context) ([]string, error) {
	keys, err := s.objects.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, s.prefix)
		if name != path.Base(name) || !isTemplate(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
