package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eventops/sponsorgate/internal/tempstore"
)

// DownloadUserCopy streams a stored user copy as an attachment. Reads do
// not consume the entry; within the retention window repeat downloads
// return identical bytes.
func (h *Handler) DownloadUserCopy(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	data, err := h.Downloads.Get(filename)
	switch {
	case errors.Is(err, tempstore.ErrUnsafeName):
		http.Error(w, "Invalid filename.", http.StatusBadRequest)
		return
	case errors.Is(err, tempstore.ErrNotFound):
		http.Error(w, "File not found or has expired. Please contact the event organizers for your copy.",
			http.StatusNotFound)
		return
	case err != nil:
		slog.Error("download: read entry", "filename", filename, "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}
