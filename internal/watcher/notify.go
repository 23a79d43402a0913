// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package watcher

import (
	"github.com/gen2brain/beeep"

	"github.com/northbound/pagechunk/internal/logger"
)

// Notifier shows a message to the user
type Notifier interface {
	Notify(title, message string, alert bool)
}

// DesktopNotifier sends OS notifications
type DesktopNotifier struct{}

// Notify sends a notification, or an alert with sound when alert is set
func (DesktopNotifier) Notify(title, message string, alert bool) {
	var err error
	if alert {
		err = beeep.Alert(title, message, "")
	} else {
		err = beeep.Notify(title, message, "")
	}
	if err != nil {
		logger.Warnf("Failed to send OS notification: %v", err)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, bool) {}
