package handler

import (
	"net/http"

	"pdf-extract-api/internal/config"
	"pdf-extract-api/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	return newRouter(
		container.ExtractionService,
		container.Config.GroupSize,
		container.Config.MaxRequestSize,
		container.Logger,
	)
}

func newRouter(extraction domain.ExtractionService, groupSize int, maxRequestSize int64, logger domain.Logger) http.Handler {
	router := mux.NewRouter()

	router.Use(RequestLogger(logger))
	router.Use(LimitBody(maxRequestSize))

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-extract-api"}`))
	}).Methods("GET")

	extractHandler := NewExtractHandler(extraction, groupSize, logger)

	router.HandleFunc("/merge-pdfs", extractHandler.MergePDFs).Methods("POST")
	router.HandleFunc("/get-page-count", extractHandler.GetPageCount).Methods("POST")
	router.HandleFunc("/suggest-fields", extractHandler.SuggestFields).Methods("POST")
	router.HandleFunc("/extract-data-group", extractHandler.ExtractDataGroup).Methods("POST")
	router.HandleFunc("/extract-table-data", extractHandler.ExtractTableData).Methods("POST")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		MaxAge: 300,
	})

	return c.Handler(router)
}
