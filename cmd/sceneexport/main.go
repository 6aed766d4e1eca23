package main

import (
	"os"

	"github.com/gofiber/fiber/v3/log"
)

// ============================================================
// Scene Export CLI
// ============================================================

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("sceneexport: %v", err)
	}
}
