package main

import (
	"fmt"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not loaded (%v), relying on OS environment variables\n", err)
	}
	Execute()
}
