package main

import (
	"fmt"
	"os"

	"captionflow/cmd/v2s/cmd"
	"captionflow/internal/config"
)

func main() {
	// a broken .env is reported but the process environment may still suffice
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Configuration Warning: %v\n", err)
	}

	cmd.Execute()
}
