package main

import (
	"os"

	"github.com/minhyannv/pipai/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
