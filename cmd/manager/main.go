package main

import (
	"os"

	"quotereel/manager-go/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
