package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/devitsbeka/foodvault/internal/backup"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

// BackupHandler exposes the backup manager to the instance admin. All
// routes sit behind the admin middleware.
type BackupHandler struct {
	manager *backup.Manager
	backups *store.BackupStore
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, backups *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: manager, backups: backups, logger: logger}
}

type backupListEntry struct {
	model.Backup
	SizeHuman string `json:"size_human"`
}

// List handles GET /api/admin/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.backups.List(50)
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	entries := make([]backupListEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, backupListEntry{
			Backup:    rec,
			SizeHuman: humanize.Bytes(uint64(rec.SizeBytes)),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// Status handles GET /api/admin/backups/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// Trigger handles POST /api/admin/backups. The backup runs in the
// background; progress is visible through Status and the history list.
func (h *BackupHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
		return
	}
	if h.manager.Status().InProgress {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a backup is already running"})
		return
	}

	go func() {
		if _, err := h.manager.RunNow(context.Background()); err != nil {
			h.logger.Error("manual backup failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// Restore handles POST /api/admin/backups/{id}/restore. On success the
// process exits so the supervisor restarts it on the restored data,
// which is why the response goes out before the restore begins.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "backups are not configured"})
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	record, err := h.backups.GetByID(id)
	if err != nil {
		h.logger.Error("load backup record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
		return
	}
	if record.Status != model.BackupStatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "only completed backups can be restored"})
		return
	}

	go func() {
		if err := h.manager.Restore(context.Background(), id); err != nil {
			h.logger.Error("restore failed", "backup_id", id, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "restore started"})
}

// Download handles GET /api/admin/backups/{id}/download, streaming the
// encrypted backup file as stored.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	record, err := h.backups.GetByID(id)
	if err != nil {
		h.logger.Error("load backup record", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "backup not found"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download backup", "backup_id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backup download failed"})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Filename))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream backup", "backup_id", id, "error", err)
	}
}
