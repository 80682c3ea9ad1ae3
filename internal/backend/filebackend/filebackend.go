// Package filebackend implements backend.Client over a directory of YAML or
// JSON documents. It stands in for the remote service in offline runs and
// tests:
//
//	blocks.yaml | blocks.json
//	translations.yaml | translations.json
//	industries.yaml | industries.json
//	prefill/<uid>.json
//	submissions/<uid>.json   (written by Submit)
//
// A submission doubles as prefill data for the same uid.
package filebackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockform/internal/filelock"
	"github.com/goliatone/go-blockform/internal/loader"
	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/i18n"
	"github.com/goliatone/go-blockform/pkg/model"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// ErrReadOnly is returned by Submit on a backend without a writable
// directory.
var ErrReadOnly = errors.New("filebackend: read-only backend")

var uidPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Backend reads documents from an fs.FS and, when rooted on disk, writes
// submissions back to it.
type Backend struct {
	dir    string
	loader *loader.Loader
	logger *zap.Logger
}

var _ backend.Client = (*Backend)(nil)

// New roots a writable backend at dir.
func New(dir string, options ...Option) (*Backend, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("filebackend: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filebackend: %s is not a directory", dir)
	}
	b := newBackend(os.DirFS(dir), options...)
	b.dir = dir
	return b, nil
}

// NewFS serves documents from files without accepting submissions.
func NewFS(files fs.FS, options ...Option) *Backend {
	return newBackend(files, options...)
}

func newBackend(files fs.FS, options ...Option) *Backend {
	b := &Backend{
		loader: loader.New(loader.Options{FileSystem: files}),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// document loads the first existing of name.yaml, name.yml, name.json.
func (b *Backend) document(ctx context.Context, name string) ([]byte, string, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		data, err := b.loader.Load(ctx, loader.FromFS(name+ext))
		if errors.Is(err, loader.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("filebackend: read %s%s: %w", name, ext, err)
		}
		return data, ext, nil
	}
	return nil, "", fmt.Errorf("filebackend: %s: %w", name, loader.ErrNotFound)
}

func decode(data []byte, ext string, into any) error {
	if ext == ".json" {
		return json.Unmarshal(data, into)
	}
	return yaml.Unmarshal(data, into)
}

// Blocks implements backend.Client.
func (b *Backend) Blocks(ctx context.Context) ([]model.FieldDeclaration, error) {
	data, ext, err := b.document(ctx, "blocks")
	if err != nil {
		return nil, err
	}
	var blocks []model.FieldDeclaration
	if ext == ".json" {
		blocks, err = model.DecodeJSON(data)
	} else {
		blocks, err = model.DecodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("filebackend: decode blocks: %w", err)
	}
	return blocks, nil
}

// Translations implements backend.Client.
func (b *Backend) Translations(ctx context.Context) (i18n.Catalog, error) {
	data, ext, err := b.document(ctx, "translations")
	if err != nil {
		return nil, err
	}
	var catalog i18n.Catalog
	if err := decode(data, ext, &catalog); err != nil {
		return nil, fmt.Errorf("filebackend: decode translations: %w", err)
	}
	return catalog, nil
}

// Industries implements backend.Client.
func (b *Backend) Industries(ctx context.Context) (taxonomy.Tree, error) {
	data, ext, err := b.document(ctx, "industries")
	if err != nil {
		return nil, err
	}
	var tree taxonomy.Tree
	if err := decode(data, ext, &tree); err != nil {
		return nil, fmt.Errorf("filebackend: decode industries: %w", err)
	}
	return tree, nil
}

// Prefill implements backend.Client. The latest submission for uid wins over
// a seeded prefill record.
func (b *Backend) Prefill(ctx context.Context, uid string) (backend.Prefill, error) {
	if !uidPattern.MatchString(uid) {
		return backend.Prefill{}, fmt.Errorf("filebackend: prefill %q: %w", uid, backend.ErrNoPrefill)
	}

	for _, name := range []string{path.Join("submissions", uid+".json"), path.Join("prefill", uid+".json")} {
		data, err := b.read(ctx, name)
		if errors.Is(err, loader.ErrNotFound) {
			continue
		}
		if err != nil {
			return backend.Prefill{}, err
		}
		var out backend.Prefill
		if err := json.Unmarshal(data, &out); err != nil {
			return backend.Prefill{}, fmt.Errorf("filebackend: decode %s: %w", name, err)
		}
		if out.Answers == nil {
			continue
		}
		return out, nil
	}
	return backend.Prefill{}, fmt.Errorf("filebackend: prefill %q: %w", uid, backend.ErrNoPrefill)
}

// read takes the shared file lock for on-disk backends so a concurrent
// Submit is never observed half written.
func (b *Backend) read(ctx context.Context, name string) ([]byte, error) {
	if b.dir == "" {
		return b.loader.Load(ctx, loader.FromFS(name))
	}
	full := filepath.Join(b.dir, filepath.FromSlash(name))
	if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", loader.ErrNotFound, name)
	}
	data, err := filelock.LockAndRead(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", loader.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("filebackend: read %s: %w", name, err)
	}
	return data, nil
}

// Submit implements backend.Client by writing submissions/<uuid>.json
// atomically under a file lock.
func (b *Backend) Submit(ctx context.Context, submission backend.Submission) error {
	if b.dir == "" {
		return ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	uid := strings.TrimSpace(submission.UUID)
	if !uidPattern.MatchString(uid) {
		return fmt.Errorf("filebackend: invalid submission id %q", submission.UUID)
	}

	data, err := json.MarshalIndent(submission, "", "  ")
	if err != nil {
		return fmt.Errorf("filebackend: encode submission: %w", err)
	}
	target := filepath.Join(b.dir, "submissions", uid+".json")
	if err := filelock.LockAndWrite(target, data); err != nil {
		return fmt.Errorf("filebackend: %w", err)
	}
	b.logger.Info("submission stored", zap.String("uuid", uid), zap.String("path", target))
	return nil
}

// Dir returns the root directory, or "" for fs-backed instances.
func (b *Backend) Dir() string {
	return b.dir
}
