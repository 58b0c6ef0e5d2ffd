package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tagsync/internal/config"
	"tagsync/internal/hierarchy"
	"tagsync/internal/logging"
	"tagsync/internal/pipeline"
	"tagsync/internal/schema"
	"tagsync/internal/syncer"
)

var version = "0.3.0"

var (
	// Global flags
	verbose    bool
	configPath string

	// resolve flags
	schemaPath  string
	fixturePath string
	rootID      string
	workDir     string
	toolPath    string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tagsync",
	Short: "tagsync - resolve tagged remote files and sync them locally",
	Long: `tagsync resolves a declarative schema of tagged fields against a
hierarchical remote data store (project -> subject -> session ->
acquisition), drives the external sync tool to materialize the matching
containers locally, and reconciles the tool's audit trail into a
field -> local path manifest.

Remote store drivers plug in through the hierarchy.Client interface;
this build ships a YAML fixture-backed client for local trees.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// resolveCmd runs the full resolve -> sync -> reconcile pipeline
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a tag schema and sync the matching files locally",
	Long: `Runs the single-pass pipeline:
  1. Resolve: recursive tag search per schema field, arity validation
  2. Sync: idempotent container tagging, one scoped tool run per field
  3. Reconcile: audit trail -> local paths, written as tags_in.yaml`,
	RunE: runResolve,
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tagsync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tagsync %s\n", version)
	},
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if workDir != "" {
		cfg.Sync.WorkDir = workDir
	}
	if toolPath != "" {
		cfg.Remote.ToolPath = toolPath
	}
	if err := logging.Initialize(logging.Options{
		Enabled: cfg.Logging.Enabled,
		Level:   cfg.Logging.Level,
		Dir:     cfg.Logging.Dir,
	}); err != nil {
		return err
	}

	s, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}
	logger.Info("schema loaded",
		zap.String("path", schemaPath),
		zap.Int("fields", len(s.Fields)))

	client, root, err := hierarchy.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	if rootID == "" {
		rootID = root.ID
	}

	timeout, err := cfg.SyncTimeout()
	if err != nil {
		return err
	}
	tool, err := syncer.NewCLI(cfg.Remote.ToolPath, timeout)
	if err != nil {
		return err
	}
	if cfg.Remote.APIKey != "" {
		if err := tool.Login(cmd.Context(), cfg.Remote.APIKey); err != nil {
			return err
		}
	}

	result, err := pipeline.Run(cmd.Context(), pipeline.Job{
		Client: client,
		Tool:   tool,
		Config: cfg,
		Schema: s,
		RootID: rootID,
	})
	if err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		return err
	}

	logger.Info("pipeline complete", zap.String("manifest", result.ManifestPath))
	for field, paths := range result.Mapping {
		logger.Info("resolved field",
			zap.String("field", field),
			zap.Strings("paths", paths))
	}
	fmt.Println(result.ManifestPath)
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML (defaults apply when empty)")

	resolveCmd.Flags().StringVar(&schemaPath, "schema", "", "path to the field schema YAML (required)")
	resolveCmd.Flags().StringVar(&fixturePath, "fixture", "", "path to a container tree fixture YAML (required)")
	resolveCmd.Flags().StringVar(&rootID, "root", "", "container id to search from (default: the fixture project)")
	resolveCmd.Flags().StringVar(&workDir, "work-dir", "", "override sync.work_dir")
	resolveCmd.Flags().StringVar(&toolPath, "tool", "", "override remote.tool_path")
	_ = resolveCmd.MarkFlagRequired("schema")
	_ = resolveCmd.MarkFlagRequired("fixture")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
