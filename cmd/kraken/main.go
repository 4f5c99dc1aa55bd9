// Command kraken resolves a project's task graph from an in-process
// *project.Context and drives it to completion, or inspects it without
// executing.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(noLoaderConfigured)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
