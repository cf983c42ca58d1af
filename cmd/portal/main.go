package main

import (
	"log"
	"net/http"
	"os"

	"github.com/toozhub/toozhub/internal/portalweb"
)

const (
	defaultPort = "3001"
	defaultAPI  = "http://localhost:8000"
)

func main() {
	port := getEnv("TOOZHUB_PORTAL_PORT", defaultPort)
	apiBase := getEnv("TOOZHUB_API_URL", defaultAPI)

	log.Printf("Portal running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, portalweb.New(apiBase)); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
