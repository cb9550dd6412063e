package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wahaj323/quizengine/internal/api"
	"github.com/wahaj323/quizengine/internal/assessment"
	"github.com/wahaj323/quizengine/internal/builder"
	"github.com/wahaj323/quizengine/internal/llm"
	"github.com/wahaj323/quizengine/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServer(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := openRuntime(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer rt.Close()

		m := metrics.New()
		svc := rt.service(assessment.WithRecorder(m))
		opts := []api.Option{
			api.WithLogger(rt.log),
			api.WithMetrics(m),
			api.WithHealthCheck(rt.store.Ping),
		}

		// Drafting is optional; the endpoint answers 503 without a provider.
		if lc, ok := llm.Discover(cfg.LLM); ok {
			provider, err := llm.NewProvider(ctx, lc, rt.store.Events(), rt.log)
			if err != nil {
				rt.log.Warn("llm provider unavailable, drafting disabled", zap.Error(err))
			} else {
				rt.log.Info("llm drafting enabled", zap.String("provider", lc.Provider), zap.String("model", provider.ModelID()))
				opts = append(opts, api.WithDrafter(builder.NewDrafter(provider, builder.DefaultDraftConfig())))
			}
		}

		srv := api.New(svc, api.NewAuth(cfg.Auth), cfg.Server, opts...)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZENGINE_SERVER_ADDR)")
	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
