// griddle runs named, dependency-ordered recipes from a Griddlefile.
package main

import (
	"os"

	"github.com/griddle-dev/griddle/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
