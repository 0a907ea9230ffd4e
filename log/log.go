// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

// Package log implements the logger interface of the wallet. Users are
// expected to pass an implementation of this interface to harmonize the
// wallet's logging with their application logging.
//
// It mimics the interface of logrus, which is the wallet's logger of choice.
package log

import "log"

var (
	// compile-time check that log.Logger implements a StdLogger
	_ StdLogger = &log.Logger{}

	// Log is the wallet framework logger. Users should set this variable to
	// their logger. It is set to the None non-logging logger by default.
	Log Logger = None
)

// StdLogger describes the interface of the standard library log package
// logger. It is the base for more complex loggers.
type StdLogger interface {
	Printf(format string, args ...interface{})
	Print(...interface{})
	Println(...interface{})

	Fatalf(format string, args ...interface{})
	Fatal(...interface{})
	Fatalln(...interface{})

	Panicf(format string, args ...interface{})
	Panic(...interface{})
	Panicln(...interface{})
}

// LevelLogger is an extension to the StdLogger with different verbosity
// levels.
type LevelLogger interface {
	StdLogger

	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
}

// Fields is a collection of fields that can be passed to Logger.WithFields.
type Fields map[string]interface{}

// Logger is a LevelLogger with structured field logging capabilities.
// This is the interface that needs to be passed to the wallet.
type Logger interface {
	LevelLogger

	WithField(key string, value interface{}) Logger
	WithFields(Fields) Logger
	WithError(error) Logger
}

func Printf(format string, args ...interface{}) { Log.Printf(format, args...) }
func Print(args ...interface{})                 { Log.Print(args...) }
func Println(args ...interface{})               { Log.Println(args...) }

func Fatalf(format string, args ...interface{}) { Log.Fatalf(format, args...) }
func Fatal(args ...interface{})                 { Log.Fatal(args...) }
func Fatalln(args ...interface{})               { Log.Fatalln(args...) }

func Panicf(format string, args ...interface{}) { Log.Panicf(format, args...) }
func Panic(args ...interface{})                 { Log.Panic(args...) }
func Panicln(args ...interface{})               { Log.Panicln(args...) }

func Tracef(format string, args ...interface{}) { Log.Tracef(format, args...) }
func Trace(args ...interface{})                 { Log.Trace(args...) }

func Debugf(format string, args ...interface{}) { Log.Debugf(format, args...) }
func Debug(args ...interface{})                 { Log.Debug(args...) }

func Infof(format string, args ...interface{}) { Log.Infof(format, args...) }
func Info(args ...interface{})                 { Log.Info(args...) }

func Warnf(format string, args ...interface{}) { Log.Warnf(format, args...) }
func Warn(args ...interface{})                 { Log.Warn(args...) }

func Errorf(format string, args ...interface{}) { Log.Errorf(format, args...) }
func Error(args ...interface{})                 { Log.Error(args...) }

// WithField calls WithField on the wallet framework logger.
func WithField(key string, value interface{}) Logger { return Log.WithField(key, value) }

// WithFields calls WithFields on the wallet framework logger.
func WithFields(fs Fields) Logger { return Log.WithFields(fs) }

// WithError calls WithError on the wallet framework logger.
func WithError(err error) Logger { return Log.WithError(err) }
