package main

import (
	"context"
	"log"
	"os"

	"github.com/MrSnakeDoc/atal/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultFactory)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Printf("❌ atal: %v", err)
		os.Exit(1)
	}
}
