// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// EventPruner deletes old event log entries.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Reloader reloads a resource from disk.
type Reloader interface {
	Reload() error
}

// PruneEvents returns a job deleting events older than retention.
func PruneEvents(pruner EventPruner, retention time.Duration, logger *slog.Logger) JobFunc {
	if retention <= 0 {
		retention = DefaultEventRetained
	}
	return func(ctx context.Context) error {
		n, err := pruner.DeleteOldEvents(ctx, retention)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("pruned event log", "deleted", n, "retention", retention)
		}
		return nil
	}
}

// ReloadGeoIP returns a job re-reading the GeoIP database so updated files
// are picked up without a restart.
func ReloadGeoIP(r Reloader) JobFunc {
	return func(context.Context) error {
		return r.Reload()
	}
}
