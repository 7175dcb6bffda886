// Package logger 依設定建立 logrus 記錄器。
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"social_media/pkg/config"
)

// New 依設定建立記錄器，輸出到 stdout
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput 與 New 相同，但可以指定輸出目標
func NewWithOutput(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format: %q", cfg.Format)
	}

	return log, nil
}

// Discard 回傳不輸出任何內容的記錄器，供測試使用
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
