// Package main provides the Wright command-line interface.
package main

import (
	"os"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/cli"

	_ "github.com/tghanchidnx/Databridge-AI-sub003/internal/adapter/snowflake"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
