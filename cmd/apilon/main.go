package main

import (
	"os"

	"github.com/apilon/apilon-landing/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
