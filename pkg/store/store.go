package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parley/pkg/config"
	"github.com/matzehuels/parley/pkg/dialogue"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/io"
	"github.com/matzehuels/parley/pkg/observability"
)

// Store holds serialized documents by name.
type Store interface {
	// Get returns the document called name.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put creates or replaces the document called name.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error
	// List returns every document name in sorted order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Options configures Open.
type Options struct {
	Logger *log.Logger
	Hooks  observability.Hooks
}

// Open builds the backend selected by cfg.Store and wraps it with hook
// instrumentation.
func Open(ctx context.Context, cfg config.Server, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Store {
	case config.StoreFile, "":
		s, err = NewFileStore(cfg.Dir)
	case config.StoreRedis:
		s, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
	case config.StoreMongo:
		s, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	case config.StoreMemory:
		s = NewMemoryStore()
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		opts.Logger.Info("document store ready", "backend", backendName(cfg.Store))
	}
	return Instrument(s, backendName(cfg.Store), opts.Hooks.Store), nil
}

func backendName(kind string) string {
	if kind == "" {
		return config.StoreFile
	}
	return kind
}

// Load reads and decodes the document called name.
func Load(ctx context.Context, s Store, name string) (*dialogue.Conversation, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	conv, err := io.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return conv, nil
}

// Save encodes conv and stores it as name.
func Save(ctx context.Context, s Store, name string, conv *dialogue.Conversation) error {
	data, err := io.Marshal(conv)
	if err != nil {
		return err
	}
	return s.Put(ctx, name, data)
}

func notFound(name string) error {
	return perrors.New(perrors.ErrCodeDocumentNotFound, "document %q not found", name)
}

func storeErr(cause error, op, name string) error {
	return perrors.Wrap(perrors.ErrCodeStore, cause, "%s %q", op, name)
}

func sorted(names []string) []string {
	sort.Strings(names)
	return names
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	Store
	backend string
	hooks   observability.StoreHooks
}

// Instrument reports reads and writes on s to hooks. A nil hooks value
// returns s unchanged.
func Instrument(s Store, backend string, hooks observability.StoreHooks) Store {
	if hooks == nil {
		return s
	}
	return &instrumented{Store: s, backend: backend, hooks: hooks}
}

func (i *instrumented) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := i.Store.Get(ctx, name)
	i.hooks.OnGet(ctx, i.backend, name, err == nil, time.Since(start))
	return data, err
}

func (i *instrumented) Put(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := i.Store.Put(ctx, name, data)
	i.hooks.OnPut(ctx, i.backend, name, len(data), time.Since(start), err)
	return err
}
