package bank

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"intellitest/internal/domain"
)

//go:embed banks/*.yaml
var embedded embed.FS

// Loader fetches question banks from a backing store.
type Loader interface {
	LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
	ListBanks(ctx context.Context) ([]string, error)
}

// FSLoader serves bank documents stored as files named <test_id>.yaml, .yml or .json.
type FSLoader struct {
	fsys fs.FS
	dir  string
}

// NewEmbeddedLoader serves the banks compiled into the binary.
func NewEmbeddedLoader() *FSLoader {
	return &FSLoader{fsys: embedded, dir: "banks"}
}

// NewDirLoader serves bank documents from a directory on disk.
func NewDirLoader(dir string) *FSLoader {
	return &FSLoader{fsys: os.DirFS(dir), dir: "."}
}

func (l *FSLoader) ListBanks(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		return nil, errors.Wrap(err, "list banks")
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := bankIDFromFile(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *FSLoader) LoadBank(_ context.Context, bankID string) (domain.QuestionBank, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		raw, err := fs.ReadFile(l.fsys, path.Join(l.dir, bankID+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.QuestionBank{}, errors.Wrapf(err, "read bank %s", bankID)
		}
		b, err := Parse(raw)
		if err != nil {
			glog.Errorf("bank %s rejected: %v", bankID, err)
			return domain.QuestionBank{}, err
		}
		if b.ID != bankID {
			return domain.QuestionBank{}, &domain.DataIntegrityError{
				BankID: bankID,
				Reason: "test_id " + b.ID + " does not match file name",
			}
		}
		return b, nil
	}
	return domain.QuestionBank{}, domain.ErrBankNotFound
}

func bankIDFromFile(name string) (string, bool) {
	ext := filepath.Ext(name)
	switch ext {
	case ".yaml", ".yml", ".json":
		return strings.TrimSuffix(name, ext), true
	}
	return "", false
}
