package main

import (
	"os"

	"github.com/baaaaaaaka/codex-workspace/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
