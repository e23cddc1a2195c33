// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jdfalk/portal-server/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal-server",
	Short: "Serve a static site with fuzzy file matching and a user registry",
	Long: `Portal Server serves the files under a root directory over HTTP. Requests
for files that do not exist are matched against the closest file name under
the root, so slightly wrong links still land on a page.

It also keeps a small user registry in SQLite (or Pebble) behind a JSON API.
Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(config.AppConfig)
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start the web server for the configured root directory and user database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(config.AppConfig)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./portal-server.yaml or $HOME/.portal-server.yaml)")
	flags.String("dir", ".", "root directory to serve")
	flags.String("db", "users.db", "path to the user database")
	flags.String("db-type", "sqlite", "database type: sqlite (default) or pebble")
	flags.Bool("debug", false, "enable debug logging and error details in responses")
	flags.String("log-file", "server.log", "append logs to this file as well as stderr (empty to disable)")
	flags.String("host", "localhost", "host to bind the web server to")
	flags.String("port", "8000", "port to run the web server on")
	flags.String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	flags.String("write-timeout", "30s", "write timeout (e.g. 30s, 1m)")
	flags.String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")

	for key, flag := range map[string]string{
		"root_dir":      "dir",
		"database_path": "db",
		"database_type": "db-type",
		"debug":         "debug",
		"log_file":      "log-file",
		"host":          "host",
		"port":          "port",
		"read_timeout":  "read-timeout",
		"write_timeout": "write-timeout",
		"idle_timeout":  "idle-timeout",
	} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigType("yaml")
		viper.SetConfigName("portal-server")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PORTAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", cfgFile, err)
	}

	config.InitConfig()
}
