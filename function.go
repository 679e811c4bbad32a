package cloudfunctions

import (
	"log"
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/newsfact/news-analyzer/internal/config"
	"github.com/newsfact/news-analyzer/internal/handlers"
)

var (
	initOnce sync.Once
	router   http.Handler
	initErr  error
)

func init() {
	functions.HTTP("AnalyzeNews", analyzeNews)
}

// analyzeNews serves the full API router as a single HTTP function.
// Initialization is deferred to the first request so deployment does not
// require the API keys at build time.
func analyzeNews(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}

		server, err := handlers.NewServer(cfg)
		if err != nil {
			initErr = err
			return
		}

		router = server.SetupRoutes()
	})

	if initErr != nil {
		log.Printf("Initialization failed: %v", initErr)
		http.Error(w, "Service initialization failed", http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
