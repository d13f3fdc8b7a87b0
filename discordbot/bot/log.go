package bot

import (
	"io"
	"os"

	"github.com/eientei/jaroid-cloner/discordbot/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger provides logger writing to stderr and, when configured, to rotated log file
func NewLogger(conf config.Log) (*logrus.Logger, error) {
	log := logrus.New()

	level := conf.Level
	if level == "" {
		level = config.DefaultLogLevel
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	log.SetLevel(lvl)

	if conf.File == "" {
		return log, nil
	}

	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   conf.File,
		MaxSize:    conf.MaxSize,
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAge,
	}))

	return log, nil
}
