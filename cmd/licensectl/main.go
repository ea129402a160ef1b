// Command licensectl is the operator tool for licensekit: it generates keys,
// issues and verifies licenses, seals them for delivery and wraps keys for
// storage.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:], DefaultConfig()); err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "licensectl: "+format+"\n", args...)
	os.Exit(1)
}
