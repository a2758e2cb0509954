// Package main provides the vibe-pgx command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-pgx/internal/genotype"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	configName = ".vibe-pgx"
	envPrefix  = "VIBE_PGX"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var fe *genotype.FormatError
	switch {
	case errors.As(err, &fe):
		fmt.Fprintf(os.Stderr, "Hint: supported inputs are VCF files and rsid/genotype tables such as 23andMe raw data\n")
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
	case isUsageError(err):
		fmt.Fprintf(os.Stderr, "Run 'vibe-pgx --help' for usage\n")
		return ExitUsage
	}
	return ExitError
}

// usageError marks errors caused by bad arguments.
type usageError struct{ error }

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	root := &cobra.Command{
		Use:   "vibe-pgx",
		Short: "Pharmacogenomic drug response scoring from consumer genotype files",
		Long: `vibe-pgx reads a 23andMe-style marker table or a VCF file, calls metabolizer
phenotypes for CYP2D6, CYP2C19, CYP2C9 and UGT1A1 from a fixed set of rsIDs,
and scores how well a small panel of drugs is expected to work.

This is a demonstration tool and must not be used for clinical decisions.`,
		Example: `  vibe-pgx score genome_23andme.txt
  vibe-pgx score --format json sample.vcf.gz
  vibe-pgx score --duckdb results.duckdb sample.vcf
  vibe-pgx markers genome.csv
  vibe-pgx serve --addr :8080`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configName+".yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("log.verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newScoreCmd())
	root.AddCommand(newMarkersCmd())
	root.AddCommand(newDrugsCmd())
	root.AddCommand(newGenesCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
	markUsageErrors(root)

	return root
}

// markUsageErrors wraps the argument validators of cmd and its subcommands
// so their failures exit with ExitUsage.
func markUsageErrors(cmd *cobra.Command) {
	if validate := cmd.Args; validate != nil {
		cmd.Args = func(c *cobra.Command, args []string) error {
			if err := validate(c, args); err != nil {
				return usageError{err}
			}
			return nil
		}
	}
	for _, sub := range cmd.Commands() {
		markUsageErrors(sub)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-pgx version %s (%s) built %s\n", version, commit, date)
		},
	}
}

func setDefaults() {
	viper.SetDefault("preview.limit", 25)
	viper.SetDefault("output.format", "tab")
	viper.SetDefault("input.max_bytes", int64(256<<20))
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("server.max_upload_bytes", int64(32<<20))
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("log.level", "info")
}

// initConfig loads defaults, the config file, and VIBE_PGX_* environment
// variables. A missing default config file is not an error.
func initConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// defaultConfigPath is where config set writes when no file was loaded.
func defaultConfigPath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds the process logger from log.level, or a development
// logger at debug level when --verbose is set.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("log.verbose") {
		return zap.NewDevelopment()
	}

	level, err := zapcore.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, usageError{fmt.Errorf("invalid log.level: %w", err)}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
