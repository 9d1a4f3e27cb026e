package main

import (
	"github.com/joho/godotenv"

	"github.com/psyra-labs/psyra-cli/internal/adapters/driving/cli"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.Execute()
}
