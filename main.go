package main

import (
	"os"

	"github.com/codetesla51/kvcache/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
