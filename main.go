// The main package for the up2d8 pipeline executable.
package main

import (
	"github.com/up2d8/pipeline/cmd"
)

func main() {
	cmd.Execute()
}
