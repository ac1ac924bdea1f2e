package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the store named by backend. The returned close function is
// never nil.
func Open(ctx context.Context, backend, path string, log *logger.Logger) (domain.KVStore, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemoryKV(log), noop, nil
	case BackendFile, "":
		s, err := OpenFileKV(path, log)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendSQLite:
		s, err := OpenSQLiteKV(ctx, path, log)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, backend)
	}
}
