package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/agenthands/askbot/internal/config"
	"github.com/agenthands/askbot/internal/core"
	"github.com/agenthands/askbot/internal/core/fallback"
	"github.com/agenthands/askbot/internal/core/match"
	"github.com/agenthands/askbot/internal/llm"
	"github.com/agenthands/askbot/internal/logger"
	"github.com/agenthands/askbot/internal/server"
	"github.com/agenthands/askbot/internal/store"
)

var (
	cfgFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:           "askbot",
	Short:         "Question answering service backed by a knowledge base and a remote LLM",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Resolve a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default $CONFIG_PATH or config/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "listen port, overrides config and $PORT")
	rootCmd.AddCommand(serveCmd, askCmd)
}

type app struct {
	cfg      *config.Config
	resolver *core.Resolver
	history  *store.HistoryStore
	remote   llm.Completer
}

func setup(ctx context.Context) (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.LoadOrDefault(configPath(cfgFile))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if port != "" {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Setup(cfg.Log)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment")
	}

	remote, err := llm.NewCompleter(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("no LLM API key configured, unmatched questions get fallback replies")
	}

	history := store.NewHistoryStore(cfg.Storage.History, cfg.History.Limit)
	resolver := core.NewResolver(
		store.NewKnowledgeStore(cfg.Storage.KnowledgeBase),
		match.NewMatcher(cfg.Matching.Cutoff),
		remote,
		fallback.NewResponder(),
		history,
	)

	return &app{cfg: cfg, resolver: resolver, history: history, remote: remote}, nil
}

const defaultConfigPath = "config/config.toml"

// configPath picks the --config flag, then $CONFIG_PATH, then the default.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

func (a *app) close() {
	if c, ok := a.remote.(io.Closer); ok {
		_ = c.Close()
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if !strings.EqualFold(a.cfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.NewServer(a.resolver, a.history, a.cfg.Server)
	r := srv.SetupRouter()

	log.Info().
		Str("port", a.cfg.Server.Port).
		Str("provider", a.cfg.LLM.Provider).
		Str("model", a.remote.Model()).
		Msg("Starting server")
	return r.Run(":" + a.cfg.Server.Port)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.resolver.Resolve(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Answer)
	if result.MatchedQuestion != "" {
		fmt.Fprintf(out, "\nmatched: %s\n", result.MatchedQuestion)
	}
	fmt.Fprintf(out, "source: %s (%s)\n", result.Source(), result.Origin)
	return nil
}
