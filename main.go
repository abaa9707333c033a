// The main package for the devicefeed executable.
package main

import (
	"github.com/fdadash/devicefeed/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
