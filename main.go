package main

import (
	"os"

	"github.com/rollcall-app/rollcall/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
