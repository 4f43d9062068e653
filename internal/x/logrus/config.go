// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logrusx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const logFilePerm = 0o644

type formatterHook struct {
	Writer    io.Writer
	LogLevels []logrus.Level
	Formatter logrus.Formatter
}

func (hook *formatterHook) Fire(entry *logrus.Entry) error {
	line, err := hook.Formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("error while formatting log entry: %w", err)
	}

	if _, err = hook.Writer.Write(line); err != nil {
		return fmt.Errorf("error while writing log entry: %w", err)
	}

	return nil
}

func (hook *formatterHook) Levels() []logrus.Level {
	return hook.LogLevels
}

// OpenLogFile opens (and creates if needed) the file every log entry is mirrored to, in JSON.
func OpenLogFile(path string) (*os.File, error) {
	if path == "" || path == "stdout" {
		return nil, nil //nolint:nilnil // no file means stdout.
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error while creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("error while opening log file: %w", err)
	}

	return f, nil
}

// InitLog routes human readable entries to stdout and, when logFile is set, every entry as JSON
// to the file.
func InitLog(logFile *os.File, debug, disableColors bool) { //nolint:revive // debug is a boolean flag
	logrus.SetOutput(io.Discard)

	stdLevels := []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}

	logrus.SetLevel(logrus.InfoLevel)

	if debug {
		stdLevels = append(stdLevels, logrus.DebugLevel)
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.AddHook(&formatterHook{
		Writer: os.Stdout,
		Formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
			ForceColors:      !disableColors,
			DisableColors:    disableColors,
		},
		LogLevels: stdLevels,
	})

	if logFile != nil {
		logrus.AddHook(&formatterHook{
			Writer:    logFile,
			Formatter: &logrus.JSONFormatter{},
			LogLevels: logrus.AllLevels,
		})
	}
}
