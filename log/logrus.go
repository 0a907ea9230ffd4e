// Copyright (c) 2026 The Plasmo Wallet Authors. All rights reserved.
// This file is part of plasmo-wallet. Use of this source code is governed by
// a MIT-style license that can be found in the LICENSE file.

package log

import "github.com/sirupsen/logrus"

// compile-time check that the adapter is a Logger.
var _ Logger = (*logrusLogger)(nil)

// logrusLogger wraps a logrus entry so that the field methods return the
// wallet's Logger interface instead of logrus types.
type logrusLogger struct {
	*logrus.Entry
}

// FromLogrus wraps a logrus logger into a wallet Logger.
func FromLogrus(l *logrus.Logger) Logger {
	return &logrusLogger{logrus.NewEntry(l)}
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{l.Entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fs Fields) Logger {
	return &logrusLogger{l.Entry.WithFields(logrus.Fields(fs))}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{l.Entry.WithError(err)}
}
