package main

import (
	"os"

	"github.com/hudumalabs/districtbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
