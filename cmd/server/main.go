package main

import (
	"flag"
	"log"

	"wordflow/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to YAML config file (optional)")
	flag.Parse()

	if err := server.Run(configPath); err != nil {
		log.Fatal(err)
	}
}
