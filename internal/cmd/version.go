package cmd

import "fmt"

// Version information - set at build time via ldflags
var (
	Version = "0.1.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Build)
}
