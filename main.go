package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/taxdoc-import/client"
	"github.com/ledgerline/taxdoc-import/config"
	"github.com/ledgerline/taxdoc-import/handler"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg)

	// Initialize document intelligence backend client
	docIntelClient := client.NewDocIntelClient(
		cfg.DocIntelURL,
		cfg.DocIntelAPIKey,
		time.Duration(cfg.PollIntervalMS)*time.Millisecond,
		cfg.MaxPollAttempts,
		appLog,
	)

	// Initialize Tesseract client
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)

	// Initialize PDF processor
	pdfProcessor := service.NewPDFProcessor()

	// Initialize service layer
	extractionService := service.NewExtractionService(docIntelClient, tesseractClient, pdfProcessor, appLog)
	importService := service.NewImportService(extractionService, cfg.MaxFileSize, appLog)

	// Initialize handler layer
	importHandler := handler.NewImportHandler(importService, extractionService, cfg.MaxFileSize, appLog)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Tax Document Import",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		imports := api.Group("/import")
		{
			imports.POST("/file", importHandler.ImportFile)
			imports.POST("/scanned", importHandler.ImportScanned)
		}
		api.POST("/extract", importHandler.Extract)
		api.POST("/mapping/suggest", importHandler.SuggestMapping)
		api.GET("/schema", importHandler.ListSchemas)
		api.GET("/schema/:docType", importHandler.GetSchema)
	}

	// Start server
	appLog.Infof("Starting Tax Document Import Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
