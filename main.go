package main

import (
	"os"

	"github.com/wahaj323/quizengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
