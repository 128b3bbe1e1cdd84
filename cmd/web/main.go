package main

import (
	"log"

	"github.com/kataras/iris/v12"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/server"
)

func main() {
	cfg := config.Load()

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	addr := cfg.Server.Addr()
	log.Printf("api server listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to run api server: %v", err)
	}
}
