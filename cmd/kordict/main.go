// Command kordict converts the three Korean dictionary XML exports
// (krdict LMF, stdict and opendict item dumps) into unified,
// first-character-sharded JSON entry files, and hosts the downstream
// example-sentence CSV filters.
//
// It is intended to be run offline as a batch tool, not as a server.
//
// Exit codes: 0 = success, 1 = error (including per-file ingest errors).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
