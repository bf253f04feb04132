package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/thanhvu/hotelier/infra/loki"
)

// Setup builds the service logger: JSON to stdout, optionally fanned out to
// a Loki push writer when lokiURL is set. The returned closer flushes the
// Loki buffer on shutdown and is a no-op otherwise.
func Setup(level, lokiURL, job string) (*logrus.Logger, func()) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	writer := loki.NewWriter(lokiURL, job)
	if writer != nil {
		logger.SetOutput(io.MultiWriter(os.Stdout, writer))
		return logger, func() { _ = writer.Close() }
	}
	logger.SetOutput(os.Stdout)
	return logger, func() {}
}

// WithOperation tags log entries the way the back-office dashboards query
// them: by module and operation name.
func WithOperation(logger *logrus.Logger, module, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"module":    module,
		"operation": operation,
	})
}
