package main

import (
	"os"

	"github.com/juiceshop/findit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
