package pathkit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gobeaver/beaver-kit/config"
)

// Global instance
var (
	defaultService *Service
	defaultOnce    sync.Once
	defaultErr     error
)

// Service binds a parser to a collaborator so paths can be parsed and
// handed to the filesystem with the same rules.
type Service struct {
	parser *PathParser
	fs     FileSystem
}

// NewService creates a Service from an existing parser and filesystem. A
// nil parser uses DefaultParser.
func NewService(parser *PathParser, fs FileSystem) *Service {
	if parser == nil {
		parser = DefaultParser()
	}
	return &Service{parser: parser, fs: fs}
}

// Builder provides a way to create Service instances with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Service instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Service instance using the builder's prefix
func (b *Builder) New() (*Service, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg)
}

// Init initializes the global Service instance and applies the configured
// log level to the package logger.
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultService, defaultErr = New(cfg)
		if defaultErr != nil {
			return
		}
		if level, err := cfg.Level(); err == nil {
			Logger().SetLevel(level)
		}
	})

	return defaultErr
}

// New creates a new Service with given config
func New(cfg *Config) (*Service, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	parser, err := cfg.Parser()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	if cfg.ReadOnly {
		fs = NewReadOnly(fs)
	}

	logEntry().WithField("driver", cfg.Driver).WithField("platform", parser.Platform().String()).Debug("service created")
	return NewService(parser, fs), nil
}

// validateConfig checks configuration validity
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Driver == "" {
		return errors.New("driver is required")
	}

	switch cfg.Driver {
	case "local":
		if cfg.LocalRoot == "" {
			return errors.New("local root is required for local driver")
		}
	case "gcs":
		if cfg.GCSBucket == "" {
			return errors.New("GCS bucket is required for GCS driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	if _, err := ParsePlatform(cfg.Platform); err != nil {
		return err
	}
	if _, err := cfg.Level(); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*Service, error) {
	if defaultService == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultService, nil
}

// Reset clears the global instance (for testing)
func Reset() {
	defaultService = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}

// ============================================================================
// Bound Operations
// ============================================================================

// Parser returns the parser used by s.
func (s *Service) Parser() *PathParser { return s.parser }

// FS returns the collaborator used by s.
func (s *Service) FS() FileSystem { return s.fs }

// Parse parses raw with the service's parser.
func (s *Service) Parse(raw string) (Path, error) {
	return s.parser.Path(raw)
}

func (s *Service) Stat(ctx context.Context, p Path) (*FileInfo, error) {
	return Stat(ctx, s.fs, p)
}

func (s *Service) Exists(ctx context.Context, p Path) (bool, error) {
	return Exists(ctx, s.fs, p)
}

func (s *Service) ReadFile(ctx context.Context, p Path) ([]byte, error) {
	return ReadFile(ctx, s.fs, p)
}

func (s *Service) WriteFile(ctx context.Context, p Path, data []byte, opts ...Option) error {
	return WriteFile(ctx, s.fs, p, data, opts...)
}

func (s *Service) MakeDirs(ctx context.Context, p Path) error {
	return MakeDirs(ctx, s.fs, p)
}

func (s *Service) RemoveTree(ctx context.Context, p Path) error {
	return RemoveTree(ctx, s.fs, p)
}

func (s *Service) ListDir(ctx context.Context, dir Path) ([]Path, error) {
	return ListDir(ctx, s.fs, dir)
}

// Glob expands a pattern string such as "/logs/*.gz".
func (s *Service) Glob(ctx context.Context, pattern string) ([]Path, error) {
	return Glob(ctx, s.fs, s.parser, Literal(pattern))
}

func (s *Service) Copy(ctx context.Context, dst Path, sources ...PathOrPattern) error {
	return Copy(ctx, s.fs, s.parser, dst, sources...)
}

func (s *Service) Move(ctx context.Context, dst Path, sources ...PathOrPattern) error {
	return Move(ctx, s.fs, s.parser, dst, sources...)
}

func (s *Service) Remove(ctx context.Context, targets ...PathOrPattern) error {
	return Remove(ctx, s.fs, s.parser, targets...)
}

func (s *Service) Walk(ctx context.Context, root Path, fn WalkFunc) error {
	return Walk(ctx, s.fs, root, fn)
}

// Select lists the files below dir accepted by selector.
func (s *Service) Select(ctx context.Context, dir Path, selector FileSelector, recursive bool) ([]Entry, error) {
	return ListWithSelector(ctx, s.fs, dir, selector, recursive)
}

// Watch watches pattern when the collaborator supports change
// notifications.
func (s *Service) Watch(ctx context.Context, pattern string) (ChangeToken, error) {
	watcher, ok := s.fs.(CanWatch)
	if !ok {
		return nil, &PathError{Op: "watch", Path: pattern, Err: ErrNotSupported}
	}
	return watcher.Watch(ctx, s.parser.Canonicalize(pattern))
}
