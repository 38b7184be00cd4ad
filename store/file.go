package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
	"github.com/YuminosukeSato/linearsvm/pkg/log"
)

const fileExt = ".model"

// FileStore keeps one envelope per file, <dir>/<handle>.model.
type FileStore struct {
	dir    string
	opts   options
	logger log.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, persistenceError("open", "", perrors.WithStack(err))
	}
	return &FileStore{
		dir:  dir,
		opts: o,
		logger: log.GetLoggerWithName("store").With(
			log.BackendKey, "file",
			log.CompressionKey, o.codec.Compression.String(),
		),
	}, nil
}

// Dir returns the directory holding the model files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(h Handle) string {
	return filepath.Join(s.dir, string(h)+fileExt)
}

// Save writes to a temporary file and links it into place; an existing
// file with the same handle makes Save fail.
func (s *FileStore) Save(ctx context.Context, m *liblinear.Model) (Handle, error) {
	h := s.opts.generator.Next()
	if err := ctx.Err(); err != nil {
		return "", persistenceError("save", h, perrors.WithStack(err))
	}
	payload, err := s.opts.codec.Encode(m)
	if err != nil {
		return "", persistenceError("save", h, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", persistenceError("save", h, perrors.WithStack(err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return "", persistenceError("save", h, perrors.WithStack(err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", persistenceError("save", h, perrors.WithStack(err))
	}
	if err := tmp.Close(); err != nil {
		return "", persistenceError("save", h, perrors.WithStack(err))
	}

	if err := os.Link(tmp.Name(), s.path(h)); err != nil {
		if os.IsExist(err) {
			err = perrors.Wrap(ErrExists, err.Error())
		}
		return "", persistenceError("save", h, perrors.WithStack(err))
	}

	s.logger.Debug("model saved", log.HandleKey, string(h), log.DataSizeKey, len(payload))
	return h, nil
}

// Load reads and decodes the model stored under h.
func (s *FileStore) Load(ctx context.Context, h Handle) (*liblinear.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, persistenceError("load", h, perrors.WithStack(err))
	}
	if err := h.Validate(); err != nil {
		return nil, persistenceError("load", h, err)
	}
	data, err := os.ReadFile(s.path(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistenceError("load", h, perrors.Wrap(ErrNotFound, err.Error()))
		}
		return nil, persistenceError("load", h, perrors.WithStack(err))
	}
	m, err := s.opts.codec.Decode(data)
	if err != nil {
		return nil, persistenceError("load", h, err)
	}
	s.logger.Debug("model loaded", log.HandleKey, string(h))
	return m, nil
}

// Delete removes the file for h.
func (s *FileStore) Delete(ctx context.Context, h Handle) error {
	if err := ctx.Err(); err != nil {
		return persistenceError("delete", h, perrors.WithStack(err))
	}
	if err := h.Validate(); err != nil {
		return persistenceError("delete", h, err)
	}
	if err := os.Remove(s.path(h)); err != nil {
		if os.IsNotExist(err) {
			return persistenceError("delete", h, perrors.Wrap(ErrNotFound, err.Error()))
		}
		return persistenceError("delete", h, perrors.WithStack(err))
	}
	return nil
}
