package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/klabast/wb-services/thermotec-agenda/internal/commands"
)

// Served under /static/
//
//go:embed static/*
var staticFiles embed.FS

func main() {
	if err := commands.NewRootCommand(staticFiles).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
