package logger

import (
	"fmt"

	oarklog "github.com/oarkflow/log"
)

// OarkLogger emits structured events through the oarkflow/log package.
// It is the default logger for the authorization facade.
type OarkLogger struct{}

func NewOarkLogger() *OarkLogger { return &OarkLogger{} }

func (o *OarkLogger) Debug(msg string, keyvals ...any) {
	emit(oarklog.Debug(), msg, keyvals)
}

func (o *OarkLogger) Info(msg string, keyvals ...any) {
	emit(oarklog.Info(), msg, keyvals)
}

func (o *OarkLogger) Error(msg string, keyvals ...any) {
	emit(oarklog.Error(), msg, keyvals)
}

func emit(b *oarklog.Entry, msg string, keyvals []any) {
	for i := 0; i < len(keyvals)-1; i += 2 {
		k := fmt.Sprint(keyvals[i])
		switch v := keyvals[i+1].(type) {
		case string:
			b = b.Str(k, v)
		case bool:
			b = b.Bool(k, v)
		case int:
			b = b.Int(k, v)
		default:
			b = b.Any(k, v)
		}
	}
	b.Msg(msg)
}
