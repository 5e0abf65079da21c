package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	port       string
	configPath string
	verbose    bool
)

// Execute runs the CLI.
func Execute() error {
	// a missing .env is fine; the environment may already be set
	_ = godotenv.Load()
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "trivia-room",
		Short:         "Single-room true/false trivia game backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&port, "port", os.Getenv("PORT"), "port to listen on (env: TRIVIA_PORT, PORT)")
	fs.StringVar(&configPath, "config", envConfig, "path to YAML config (env: TRIVIA_CONFIG, CONFIG_PATH)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging (env: TRIVIA_VERBOSE)")
	bindEnv(fs)

	cmd.AddCommand(NewStartCmd(&configPath, &port, &verbose))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}

// bindEnv lets TRIVIA_* environment variables set any flag the user did not
// pass explicitly.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("TRIVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
