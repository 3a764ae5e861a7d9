// Command leadctl inspects stored leads and payments and runs migrations.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/getcalls/website/internal/cli"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
