package main

import (
	"os"

	"github.com/a11yfix/a11yfix/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
