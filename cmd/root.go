// Package cmd provides the pathtemplate command-line interface.
//
// Configuration is read from several sources, highest priority first:
//
//  1. Command-line flags (--config, --log-level, ...)
//  2. PATHTEMPLATE_CONFIG_FILE: path to the configuration file
//  3. Environment variables following PATHTEMPLATE_<SECTION>_<OPTION>,
//     for example PATHTEMPLATE_OUTPUT_FORMAT=json
//  4. .pathtemplate.yml in the current directory
package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pathtemplate/internal/config"
	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/internal/logging"
)

const configEnvVar = "PATHTEMPLATE_CONFIG_FILE"

var (
	cfgFile   string
	configErr error

	// appLogger is replaced once flags are parsed.
	appLogger = logging.NewLogger(nil)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pathtemplate",
	Short: "Render URI and path templates from named bindings",
	Long: `pathtemplate renders URI and path templates such as

  /v1/{org?lc}/users/{id}
  {bucket}/{key?slashok}
  {a?emptycollapse}/{b}/{a#again?uc}

Placeholders may carry one modifier (uc, lc, ucfirst, lcfirst, slashok,
emptycollapse) and may repeat a variable through a #tag alias.

Quick Start:
  pathtemplate render '/v1/{org}/users/{id}' --set org=acme --set id=42
  pathtemplate render --name users --bindings prod.yml
  pathtemplate validate              Check every configured template
  pathtemplate inspect '{a#x?uc}/{a}' Show how a template is parsed
  pathtemplate modifiers             List available modifiers
  pathtemplate watch --name users    Re-render when binding files change`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .pathtemplate.yml, can also use "+configEnvVar+" env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig selects the configuration file and enables PATHTEMPLATE_
// environment overrides. A missing default file is not an error; a missing
// or unreadable file named explicitly is reported when a command runs.
func initConfig() {
	explicit := true
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(configEnvVar); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pathtemplate")
	}

	viper.SetEnvPrefix("PATHTEMPLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{"output.format", "log.level", "log.format", "watch.debounce", "watch.patterns", "bindings.files"} {
		_ = viper.BindEnv(key)
	}

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			configErr = apperrors.WrapConfig(err, "reading configuration file")
		}
	}
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return apperrors.WrapConfig(err, "invalid --log-level")
	}

	appLogger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: viper.GetString("log.format"),
		Output: cmd.ErrOrStderr(),
	})

	if used := viper.ConfigFileUsed(); used != "" && configErr == nil {
		appLogger.Debug(context.Background(), "Using config file", "path", used)
	}

	return configErr
}

// loadConfig loads and validates the configuration held by viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.WrapConfig(err, "failed to load config")
	}
	return cfg, nil
}

// configBaseDir is the directory relative binding paths in the config
// file are resolved against.
func configBaseDir() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Dir(used)
	}
	return ""
}
