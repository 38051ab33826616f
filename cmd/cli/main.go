package main

import (
	"boostlab/internal/commander"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()
	commander.NewCommander().Start()
}
