package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rpupo63/mycms/cmd"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
