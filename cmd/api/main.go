package main

import (
	"flag"
	"log"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/config"
	pkgconfig "github.com/Ouakat/SaaS-Delivery-sub001/pkg/config"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	cfg, err := config.New(*configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	app := pkgconfig.NewApp(cfg)

	log.Println("Starting delivery backend...")
	if err := app.Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
