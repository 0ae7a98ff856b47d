package fleet

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/moore-mac/vehicle-rental-manager/internal/checksum"
)

// EventCallback is called after a watcher-driven reload. table is the
// table file name (VehicleTable or CustomerTable).
type EventCallback func(table string)

// Watch starts an fsnotify watcher on the data directory and reloads the
// matching collection whenever a table file changes, until ctx is
// cancelled. It calls cb (if non-nil) after each reload.
//
// The repository's own saves also land here (rename into place fires a
// Create event); reloading then is a no-op data-wise and doubles as the
// change notification for SSE clients. A per-table content checksum
// suppresses the duplicate events editors and atomic renames produce.
func Watch(ctx context.Context, repo *Repository, dataDir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dataDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dataDir))

	sums := map[string]string{
		VehicleTable:  checksum.SumFile(filepath.Join(dataDir, VehicleTable)),
		CustomerTable: checksum.SumFile(filepath.Join(dataDir, CustomerTable)),
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			table := filepath.Base(ev.Name)
			if table != VehicleTable && table != CustomerTable {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			sum := checksum.SumFile(ev.Name)
			if sum == sums[table] {
				continue
			}
			sums[table] = sum

			var reloadErr error
			if table == VehicleTable {
				reloadErr = repo.ReloadVehicles()
			} else {
				reloadErr = repo.ReloadCustomers()
			}
			if reloadErr != nil {
				logger.Warn("watcher: reload failed",
					slog.String("table", table),
					slog.String("error", reloadErr.Error()))
				continue
			}
			logger.Debug("watcher: reloaded", slog.String("table", table))
			if cb != nil {
				cb(table)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
