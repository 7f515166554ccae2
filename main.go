// The main package for the changelog executable.
package main

import (
	"github.com/dazdaz/app-gcp-changelog/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
