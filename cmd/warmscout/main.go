package main

import (
	"github.com/warmpath/scout-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
