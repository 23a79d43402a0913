// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package events

import (
	"github.com/northbound/pagechunk/internal/logger"
)

// NewLogObserver logs every event at debug level, and file errors at error level
func NewLogObserver(l *logger.Logger) Observer {
	return ObserverFunc(func(e Event) {
		fields := make(map[string]interface{}, len(e.Fields)+3)
		for k, v := range e.Fields {
			fields[k] = v
		}
		fields["event"] = e.Type
		if e.Path != "" {
			fields["path"] = e.Path
		}
		if e.Chunks > 0 {
			fields["chunks"] = e.Chunks
		}

		entry := l.WithFields(fields)
		if e.Error != "" {
			entry.WithField("error", e.Error).Error(e.Message)
			return
		}
		entry.Debug(e.Message)
	})
}
