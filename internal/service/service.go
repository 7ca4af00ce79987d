// Package service ties output file decoding to storage, persistence and
// rendering for the command line.
package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/swmm-toolbox/internal/parser/swmm"
	"github.com/swmm-toolbox/internal/repository"
	"github.com/swmm-toolbox/internal/storage"
	"github.com/swmm-toolbox/pkg/compression"
	"github.com/swmm-toolbox/pkg/config"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/telemetry"
	"github.com/swmm-toolbox/pkg/utils"
)

// Service is the main application service.
type Service struct {
	config  *config.Config
	logger  utils.Logger
	storage storage.Storage
	repos   *repository.Repositories
	workDir string
}

// Option configures a Service.
type Option func(*Service)

// WithStorage sets the storage backend instead of building one from config.
func WithStorage(st storage.Storage) Option {
	return func(s *Service) { s.storage = st }
}

// WithRepositories sets the repositories instead of connecting from config.
func WithRepositories(r *repository.Repositories) Option {
	return func(s *Service) { s.repos = r }
}

// WithWorkDir sets the directory used for downloaded and decompressed inputs.
func WithWorkDir(dir string) Option {
	return func(s *Service) { s.workDir = dir }
}

// New creates a new Service instance. A nil config means config.Default().
func New(cfg *config.Config, logger utils.Logger, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	s := &Service{config: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// Storage returns the storage backend, creating it from config on first use.
func (s *Service) Storage() (storage.Storage, error) {
	if s.storage != nil {
		return s.storage, nil
	}

	s.logger.Debug("Initializing storage (%s)...", s.config.Storage.Type)
	st, err := storage.NewStorage(&s.config.Storage)
	if err != nil {
		return nil, err
	}
	s.storage = st
	return st, nil
}

// Repositories returns the repositories, connecting and migrating on first use.
func (s *Service) Repositories(ctx context.Context) (*repository.Repositories, error) {
	if s.repos != nil {
		return s.repos, nil
	}

	s.logger.Debug("Connecting to database (%s)...", s.config.Database.Type)
	db, err := repository.NewGormDB(repository.DBConfigFrom(s.config.Database))
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)
	if err := repos.Migrate(ctx); err != nil {
		repos.Close()
		return nil, err
	}
	s.repos = repos
	return repos, nil
}

// Close releases the database connection, if one was opened.
func (s *Service) Close() error {
	if s.repos == nil {
		return nil
	}
	err := s.repos.Close()
	s.repos = nil
	return err
}

// HealthCheck pings the database when one is connected.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.repos == nil {
		return nil
	}
	if err := s.repos.HealthCheck(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabaseError, "database health check failed", err)
	}
	return nil
}

// Input is an opened output file together with the scratch directory
// that was needed to reach it.
type Input struct {
	*swmm.Store
	Source  string
	scratch string
}

// Close closes the store and removes scratch files.
func (in *Input) Close() error {
	err := in.Store.Close()
	in.removeScratch()
	return err
}

func (in *Input) removeScratch() {
	if in.scratch != "" {
		os.RemoveAll(in.scratch)
		in.scratch = ""
	}
}

// scratchDir returns the per-input scratch directory, creating it on first use.
func (s *Service) scratchDir(in *Input) (string, error) {
	if in.scratch != "" {
		return in.scratch, nil
	}
	base := s.workDir
	if base != "" {
		if err := os.MkdirAll(base, 0755); err != nil {
			return "", apperrors.Wrap(apperrors.CodeIO, "failed to create work directory", err)
		}
	}
	dir, err := os.MkdirTemp(base, "swmmtoolbox-")
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "failed to create scratch directory", err)
	}
	in.scratch = dir
	return dir, nil
}

// Open resolves input to a local file and decodes it. The input may be a
// path or a cos:// or storage:// location, and may be gzip or zstd compressed.
func (s *Service) Open(ctx context.Context, input string) (in *Input, err error) {
	ctx, span := telemetry.StartSpan(ctx, "swmm.open", attribute.String("swmm.input", input))
	defer func() { telemetry.EndSpan(span, err) }()

	loc, err := storage.ParseLocation(input)
	if err != nil {
		return nil, err
	}

	in = &Input{Source: input}
	defer func() {
		if err != nil {
			in.removeScratch()
		}
	}()

	path := loc.Key
	if loc.Remote {
		st, err := s.Storage()
		if err != nil {
			return nil, err
		}
		dir, err := s.scratchDir(in)
		if err != nil {
			return nil, err
		}
		if path, err = storage.Fetch(ctx, st, loc, dir); err != nil {
			return nil, err
		}
		s.logger.Debug("downloaded %s to %s", input, path)
	}

	plain, err := s.decompress(in, path)
	if err != nil {
		return nil, err
	}
	if plain != path {
		s.logger.Debug("decompressed %s to %s", path, plain)
	}

	store, err := swmm.Open(plain, &swmm.Options{Logger: s.logger.WithField("file", filepath.Base(path))})
	if err != nil {
		return nil, err
	}
	for _, w := range store.Warnings() {
		span.AddEvent(w)
	}
	span.SetAttributes(
		attribute.Int("swmm.version", int(store.Version())),
		attribute.Int("swmm.periods", store.Periods()),
	)

	in.Store = store
	return in, nil
}

// decompress returns path unchanged for plain files, or the path of a
// decompressed copy in the input's scratch directory.
func (s *Service) decompress(in *Input, path string) (string, error) {
	t, err := compression.DetectFile(path)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "failed to open "+path, err)
	}
	if t == compression.TypeNone {
		return path, nil
	}

	dir, err := s.scratchDir(in)
	if err != nil {
		return "", err
	}
	plain := filepath.Join(dir, "plain-"+strings.TrimSuffix(filepath.Base(path), t.Extension()))
	if _, err := compression.DecompressFile(path, plain); err != nil {
		return "", apperrors.Wrap(apperrors.CodeIO, "failed to decompress "+path, err)
	}
	return plain, nil
}
