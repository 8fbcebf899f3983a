package store

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"

	"github.com/franz/rstream/internal/util"
)

// sqlLogger forwards driver-level statement traces to the util logger
type sqlLogger struct{}

func (l *sqlLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	switch level {
	case sqldblogger.LevelError:
		util.ErrorLog("sql %s: %v", msg, data)
	case sqldblogger.LevelTrace:
		util.DebugLog("sql %s: %v", msg, data)
	default:
		if query, ok := data["query"]; ok {
			util.DebugLog("sql %s [%vms] %v", msg, data["duration"], query)
		} else {
			util.DebugLog("sql %s [%vms]", msg, data["duration"])
		}
	}
}
