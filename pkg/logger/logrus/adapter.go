package logrus

import (
	"github.com/quantado/backplot/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Adapter exposes a logrus logger through the logger.Logger interface.
type Adapter struct {
	entry *logrus.Entry
}

func NewAdapter(log *logrus.Logger) *Adapter {
	return &Adapter{entry: logrus.NewEntry(log)}
}

// WithField implements logger.Logger.
func (l *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{entry: l.entry.WithField(key, value)}
}

// WithFields implements logger.Logger.
func (l *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{entry: l.entry.WithFields(fields)}
}

// WithError implements logger.Logger.
func (l *Adapter) WithError(err error) logger.Logger {
	return &Adapter{entry: l.entry.WithError(err)}
}

func (l *Adapter) Print(args ...any) { l.entry.Print(args...) }
func (l *Adapter) Trace(args ...any) { l.entry.Trace(args...) }
func (l *Adapter) Debug(args ...any) { l.entry.Debug(args...) }
func (l *Adapter) Info(args ...any)  { l.entry.Info(args...) }
func (l *Adapter) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *Adapter) Error(args ...any) { l.entry.Error(args...) }
func (l *Adapter) Fatal(args ...any) { l.entry.Fatal(args...) }
func (l *Adapter) Panic(args ...any) { l.entry.Panic(args...) }

func (l *Adapter) Printf(format string, args ...any) { l.entry.Printf(format, args...) }
func (l *Adapter) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }
func (l *Adapter) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Adapter) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Adapter) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Adapter) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *Adapter) Fatalf(format string, args ...any) { l.entry.Fatalf(format, args...) }
func (l *Adapter) Panicf(format string, args ...any) { l.entry.Panicf(format, args...) }

// SetLevel implements logger.Logger.
func (l *Adapter) SetLevel(level logger.Level) {
	l.entry.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements logger.Logger.
func (l *Adapter) GetLevel() logger.Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.PanicLevel:
		return logger.PanicLevel
	default:
		return logger.NoLevel
	}
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.InfoLevel:
		return logrus.InfoLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	case logger.PanicLevel:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}
