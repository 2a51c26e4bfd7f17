package main

import (
	"os"

	"github.com/aristath/etfadvisor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
