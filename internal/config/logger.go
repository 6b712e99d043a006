package config

import (
	"github.com/sirupsen/logrus"
)

// InitLogger configura el logger global del proceso.
func InitLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.InfoLevel)
}
