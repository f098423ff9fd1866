package main

import (
	"os"

	"github.com/turkuazz/launcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
