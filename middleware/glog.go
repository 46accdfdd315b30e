package middleware

import (
	"context"

	"github.com/goliatone/go-chain"
	"github.com/goliatone/go-logger/glog"
)

// glogAdapter bridges a go-logger instance to the chain.Logger contract.
type glogAdapter struct {
	logger glog.Logger
}

// WrapGlog adapts a go-logger instance for use with chain components.
func WrapGlog(logger glog.Logger) chain.Logger {
	if logger == nil {
		return chain.NewFmtLogger(nil)
	}
	return glogAdapter{logger: logger}
}

func (l glogAdapter) Trace(msg string, args ...any) { l.logger.Trace(msg, args...) }
func (l glogAdapter) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l glogAdapter) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l glogAdapter) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l glogAdapter) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l glogAdapter) Fatal(msg string, args ...any) { l.logger.Fatal(msg, args...) }

func (l glogAdapter) WithContext(ctx context.Context) chain.Logger {
	return glogAdapter{logger: l.logger.WithContext(ctx)}
}

func (l glogAdapter) WithFields(fields map[string]any) chain.Logger {
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return glogAdapter{logger: fl.WithFields(fields)}
	}
	return l
}
