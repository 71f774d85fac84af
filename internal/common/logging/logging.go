package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ============================================================
// Logging
// ============================================================

// Setup настраивает глобальный logrus: JSON в production, текст в остальных окружениях.
func Setup(level string, production bool) {
	logrus.SetOutput(os.Stdout)

	if production {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithField("level", level).Warn("Unknown log level, falling back to info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// For возвращает логгер с полем component.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
