package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	HttpXRequestId = "X-Request-Id"
	CtxRequestId   = "requestId"
	FieldComponent = "component"
)

type ctxKey string

// InitLog configures the standard logrus logger used by every component.
func InitLog(logLevel string) {
	InitLogWithOutput(logLevel, os.Stdout)
}

func InitLogWithOutput(logLevel string, out io.Writer) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Errorf("failed to parse log level: %v, err: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		DisableColors:   true,
		DisableQuote:    true,
		CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
		},
	})
}

// WithRequestId stores the request id so that GetLogger can tag log lines with it.
func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, ctxKey(CtxRequestId), requestId)
}

func GetLogger(c context.Context) *logrus.Entry {
	v := c.Value(ctxKey(CtxRequestId))
	if v == nil {
		// gin.Context exposes its keys through Value with plain string keys.
		v = c.Value(CtxRequestId)
	}
	if v != nil {
		return logrus.WithFields(logrus.Fields{
			CtxRequestId: v,
		})
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func NewLogger() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

func ComponentLogger(component string) *logrus.Entry {
	return NewLogger().WithField(FieldComponent, component)
}
