package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline/taxdoc-import/client"
	"github.com/ledgerline/taxdoc-import/config"
	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/service"
)

var (
	processDocType string
	processMapping []string
	processScanned bool
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run a document through the import pipeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processDocType, "type", "t", "wage-statement", "document type to import as")
	processCmd.Flags().StringSliceVarP(&processMapping, "map", "m", nil, "column mapping override, source=target (repeatable)")
	processCmd.Flags().BoolVar(&processScanned, "scanned", false, "force OCR extraction regardless of file extension")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	overrides, err := parseMappingFlags(processMapping)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	appLog := logger.NewLogger(cfg)

	docIntelClient := client.NewDocIntelClient(
		cfg.DocIntelURL,
		cfg.DocIntelAPIKey,
		time.Duration(cfg.PollIntervalMS)*time.Millisecond,
		cfg.MaxPollAttempts,
		appLog,
	)
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	pdfProcessor := service.NewPDFProcessor()
	extractionService := service.NewExtractionService(docIntelClient, tesseractClient, pdfProcessor, appLog)
	importService := service.NewImportService(extractionService, cfg.MaxFileSize, appLog)

	filename := filepath.Base(path)

	var result *dto.PipelineResult
	if processScanned || isScannedExt(filename) {
		progress := make(chan dto.ProgressEvent, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range progress {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %s\n", ev.Stage, ev.Message)
			}
		}()
		result, err = importService.ProcessScanned(cmd.Context(), filename, data, processDocType, progress)
		close(progress)
		<-done
	} else {
		result, err = importService.ProcessFile(cmd.Context(), filename, data, processDocType, overrides)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func isScannedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}

func parseMappingFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid mapping %q, expected source=target", pair)
		}
		overrides[parts[0]] = parts[1]
	}
	return overrides, nil
}
