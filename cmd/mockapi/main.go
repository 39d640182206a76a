// Command mockapi runs the in-memory development backend.  It serves
// the same routes and seed data the frontend was built against, so the
// podo client works end to end without the real reservation service.
package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/CLD-3rd/team2-frontend/internal/config"
	"github.com/CLD-3rd/team2-frontend/internal/mockapi"
)

func main() {
	cfg := config.Load()
	e := echo.New()
	e.HideBanner = true
	mockapi.NewServer(cfg.JWTSecret).Register(e)

	addr := ":" + cfg.MockPort
	log.Printf("mock backend listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
