// desmosc compiles a small functional language into graph states for the Desmos graphing
// calculator.
//
// With no arguments it starts an interactive session; 'desmosc help' lists the other commands.

package main

import (
	"os"

	"desmosc/source/hub"
)

func main() {
	os.Exit(hub.New(os.Stdin, os.Stdout, os.Stderr).Run(os.Args[1:]))
}
