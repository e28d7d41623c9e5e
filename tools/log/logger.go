// Package log 是对 logrus 的一层薄封装，项目里统一从这里打日志
package log

import "github.com/sirupsen/logrus"

var (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

type (
	TextFormatter = logrus.TextFormatter
	Level         = logrus.Level
	Fields        = logrus.Fields
)

// ParseLevel 把 "debug"、"info" 这样的字符串转换成日志级别
func ParseLevel(level string) (Level, error) {
	return logrus.ParseLevel(level)
}

func SetFormatter(formatter logrus.Formatter) {
	logrus.SetFormatter(formatter)
}

func SetLevel(level logrus.Level) {
	logrus.SetLevel(level)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return logrus.WithField(key, value)
}

func WithFields(fields Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}

func WithError(err error) *logrus.Entry {
	return logrus.WithError(err)
}

func Info(messages ...interface{}) {
	logrus.Info(messages...)
}

func Infof(format string, messages ...interface{}) {
	logrus.Infof(format, messages...)
}

func Warnf(format string, messages ...interface{}) {
	logrus.Warnf(format, messages...)
}

func Error(messages ...interface{}) {
	logrus.Error(messages...)
}

func Fatal(messages ...interface{}) {
	logrus.Fatal(messages...)
}

func Debugf(format string, messages ...interface{}) {
	logrus.Debugf(format, messages...)
}
