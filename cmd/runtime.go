package cmd

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/logger"
	"github.com/wahaj323/quizengine/internal/store"
)

// runtime holds what local commands share: a logger and the store.
type runtime struct {
	log   *zap.Logger
	store *store.Store
}

// openRuntime builds the logger and opens the configured database. console
// receives human-readable log lines; the TUI passes nil.
func openRuntime(ctx context.Context, console io.Writer) (*runtime, error) {
	log, err := logger.New(cfg.Log, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	dsn, err := cfg.ResolveDSN()
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("driver", st.Dialect()))
	return &runtime{log: log, store: st}, nil
}

func (r *runtime) service(opts ...assessment.Option) *assessment.Service {
	return assessment.New(r.store, append([]assessment.Option{assessment.WithLogger(r.log)}, opts...)...)
}

func (r *runtime) Close() error {
	_ = r.log.Sync()
	return r.store.Close()
}
