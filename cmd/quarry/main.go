package main

import (
	"os"

	cmd "github.com/quarrydata/quarry/internal"
	"github.com/quarrydata/quarry/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.LogError(err.Error())
		os.Exit(1)
	}
}
