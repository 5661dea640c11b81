package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg resolves every setting from, in order: flag, CONVO_* environment
// variable, .convo.yaml in the working directory or home, then the flag
// default.
var cfg = viper.New()

var rootCmd = &cobra.Command{
	Use:   "convo",
	Short: "Convo builds, validates, and walks branching dialogue trees",
	Long: `Convo is a dialogue tree toolkit. Trees live in a small YAML format;
convo validates them, renders them as Mermaid graphs, walks them
interactively, and serves them to other programs over HTTP or MCP.`,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("store", "memory", "session store backend: memory, file, redis, or sqlite")
	pf.String("redis-addr", "localhost:6379", "redis address for --store redis")
	pf.String("sqlite-path", "", "database file for --store sqlite (default <data-dir>/sessions.db)")
	pf.String("data-dir", ".convo", "directory for file-backed sessions and local data")
	pf.String("session-key", "", "hex AES-256 key; encrypts file-store sessions at rest (CONVO_SESSION_KEY)")
	pf.String("session-key-fallbacks", "", "comma-separated hex keys still accepted for decryption")
	pf.Bool("debug", false, "log debug detail to stderr")

	for _, name := range []string{"store", "redis-addr", "sqlite-path", "data-dir", "session-key", "session-key-fallbacks", "debug"} {
		if err := cfg.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfg.SetConfigName(".convo")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("$HOME")

	cfg.SetEnvPrefix("convo")
	cfg.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
}
