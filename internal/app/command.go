package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mx-space/content-migrate/internal/config"
	"github.com/mx-space/content-migrate/internal/modules/migration"
	"github.com/mx-space/content-migrate/internal/modules/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Loader yields the items of a job and the site URL relative asset links
// resolve against.
type Loader func(ctx context.Context, a *App) (items []source.Item, siteURL string, err error)

// Job describes one migration binary.
type Job struct {
	Name    string
	Short   string
	Options migration.Options
	Load    Loader
	// Configure adjusts the job from the loaded config (optional).
	Configure func(cfg *config.AppConfig, job *Job)
}

// NewCommand builds the root command of a migration binary.
func NewCommand(job Job) *cobra.Command {
	var flags flagOverrides
	cmd := &cobra.Command{
		Use:           job.Name,
		Short:         job.Short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), job, flags)
		},
	}
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to YAML config file (default "+config.DefaultConfigPath+")")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Convert and report without writing documents or assets")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "Locale for documents that carry none")
	cmd.Flags().StringVar(&flags.sourceURL, "source-url", "", "WordPress REST API base URL")
	return cmd
}

// Execute runs the command and exits 1 on an unhandled error.
func Execute(job Job) {
	if err := NewCommand(job).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(parent context.Context, job Job, flags flagOverrides) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	flags.apply(cfg)
	if job.Configure != nil {
		job.Configure(cfg, &job)
	}

	logger := newLogger(cfg, job.Name)
	defer logger.Sync()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	go func() {
		select {
		case sig := <-quit:
			logger.Warn("interrupted, finishing current item", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	application, err := New(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", zap.Error(err))
		return err
	}
	defer application.Shutdown()

	items, siteURL, err := job.Load(ctx, application)
	if err != nil {
		logger.Error("failed to load items", zap.Error(err))
		return err
	}
	logger.Info("items loaded", zap.String("job", job.Name), zap.Int("count", len(items)))

	pipeline := application.Pipeline(application.Converter(siteURL), job.Options)
	summary := pipeline.Run(ctx, items)

	fmt.Fprintf(os.Stdout, "%s: checked=%d created=%d updated=%d errors=%d\n",
		job.Name, summary.Checked, summary.Created, summary.Updated, summary.Failed)
	return nil
}
