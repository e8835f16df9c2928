package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/ledgerline/taxdoc-import/config"
)

// Logger wraps logrus with pipeline-specific field helpers.
type Logger struct {
	*logrus.Logger
}

// NewLogger creates a structured logger configured from cfg.
func NewLogger(cfg *config.Config) *Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &Logger{Logger: log}
}

// Default returns a plain text logger at info level, for callers that have
// no configuration loaded.
func Default() *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return &Logger{Logger: log}
}

// WithDocument adds the source filename to log entries.
func (l *Logger) WithDocument(filename string) *logrus.Entry {
	return l.WithField("document", filename)
}

// WithDocType adds the document type to log entries.
func (l *Logger) WithDocType(docType string) *logrus.Entry {
	return l.WithField("doc_type", docType)
}

// WithBatch adds the batch identifier to log entries.
func (l *Logger) WithBatch(batchID string) *logrus.Entry {
	return l.WithField("batch_id", batchID)
}
