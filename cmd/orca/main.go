package main

import (
	"fmt"
	"os"

	"github.com/vanthaita/Orca-CLI-sub000/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.DefaultConfig()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
