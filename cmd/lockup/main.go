// Command lockup runs lockup scenarios and manages the receipt journal.
package main

import "github.com/Klingon-tech/klingnet-lockup/internal/cli"

// version is set at build time via -ldflags.
var version = "0.1.0-dev"

func main() {
	cli.Execute(version)
}
