// Package config loads per-project griddle settings from an optional
// .griddle.toml next to the recipe file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the project config file looked up beside the recipe file.
const FileName = ".griddle.toml"

// Config holds per-project settings. Every field is optional; the zero
// value is a valid configuration.
type Config struct {
	// Shell is the command used to run each recipe line, e.g.
	// ["sh", "-c"]. The expanded command line is appended as the final
	// argument.
	Shell []string `toml:"shell"`

	// Theme selects the CLI color scheme: "auto", "dark", or "light".
	Theme string `toml:"theme"`

	// Dotenv loads a .env file beside the recipe file into the
	// environment passed to recipe subprocesses.
	Dotenv bool `toml:"dotenv"`
}

// defaultShell runs command lines when no override is configured.
var defaultShell = []string{"sh", "-c"}

// Load reads the project config from dir. A missing file is not an error;
// it yields the zero config.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(cfg.Shell) > 0 && cfg.Shell[0] == "" {
		return nil, fmt.Errorf("parsing %s: shell command must not be empty", path)
	}
	return &cfg, nil
}

// ShellCommand returns the configured shell invocation, falling back to
// "sh -c".
func (c *Config) ShellCommand() []string {
	if len(c.Shell) > 0 {
		return c.Shell
	}
	return defaultShell
}

// DotenvVars reads the .env file beside the recipe file and returns its
// entries as KEY=VALUE strings, ready to append to a subprocess
// environment. A missing .env file yields nothing.
func (c *Config) DotenvVars(dir string) ([]string, error) {
	if !c.Dotenv {
		return nil, nil
	}

	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env, nil
}
