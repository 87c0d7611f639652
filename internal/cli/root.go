package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legisdesk/bill-registry/internal/logger"
)

// Version is printed by the version command.
const Version = "billctl v0.3.0"

// Settings is the effective CLI configuration.
type Settings struct {
	Source   string        `yaml:"source" mapstructure:"source"`
	BillsURL string        `yaml:"bills_url" mapstructure:"bills_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	LLM      LLMSettings   `yaml:"llm" mapstructure:"llm"`
}

// LLMSettings configures the translate command.
type LLMSettings struct {
	Provider string        `yaml:"provider" mapstructure:"provider"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	log     *slog.Logger
}

// NewRootCmd builds the billctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logger.Discard()}

	root := &cobra.Command{
		Use:   "billctl",
		Short: "Inspect the legislative bill registry",
		Long: `billctl lists, filters and aggregates the bill registry and news feed,
and translates bills through the configured text-generation provider.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (BILLCTL_*)
3. Config file (~/.billctl/config.yaml)
4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.billctl/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().String("source", "static", "bill source (static, remote)")
	root.PersistentFlags().String("bills-url", "", "remote bill endpoint for --source=remote")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "overall command timeout")

	_ = a.v.BindPFlag("source", root.PersistentFlags().Lookup("source"))
	_ = a.v.BindPFlag("bills_url", root.PersistentFlags().Lookup("bills-url"))
	_ = a.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	a.v.SetDefault("llm.provider", "gemini")
	a.v.SetDefault("llm.api_key", "")
	a.v.SetDefault("llm.base_url", "")
	a.v.SetDefault("llm.model", "gemini-3-flash-preview")
	a.v.SetDefault("llm.timeout", 30*time.Second)

	root.AddCommand(
		a.billsCmd(),
		a.newsCmd(),
		a.analyticsCmd(),
		a.translateCmd(),
		a.configCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
			},
		},
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// initConfig reads in config file and ENV variables
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".billctl"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	a.v.SetEnvPrefix("BILLCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if a.cfgFile != "" {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
	} else if a.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", a.v.ConfigFileUsed())
	}

	if a.verbose {
		a.log = logger.NewWithWriter(cmd.ErrOrStderr(), "billctl", "debug", "")
	}
	return nil
}

func (a *app) settings() (Settings, error) {
	var s Settings
	if err := a.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
