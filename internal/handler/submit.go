package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/eventops/sponsorgate/internal/model"
	"github.com/eventops/sponsorgate/internal/submit"
)

// SubmitForm handles the multipart pledge submission. Field validation and
// the atomic token consume both happen inside the orchestrator; this layer
// only parses the request and maps outcomes to status codes.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	// Two images plus text fields; anything past this is oversized anyway.
	r.Body = http.MaxBytesReader(w, r.Body, 3*h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("File is too large (Max %dMB).", h.Cfg.MaxUploadBytes/(1024*1024)),
				http.StatusBadRequest)
			return
		}
		jsonError(w, "An error occurred during file upload.", http.StatusBadRequest)
		return
	}

	req := submit.Request{
		Token: r.FormValue("token"),
		Fields: model.SubmissionFields{
			Name:          r.FormValue("name"),
			Company:       r.FormValue("company"),
			Designation:   r.FormValue("designation"),
			Amount:        r.FormValue("amount"),
			PaymentMethod: r.FormValue("paymentMethod"),
			CollectedBy:   r.FormValue("collectedBy"),
			CollectedOn:   r.FormValue("collectedOn"),
		},
	}

	var err error
	if req.Screenshot, err = formUpload(r, "paymentScreenshot"); err != nil {
		jsonError(w, "An error occurred during file upload.", http.StatusBadRequest)
		return
	}
	if req.Signature, err = formUpload(r, "signature"); err != nil {
		jsonError(w, "An error occurred during file upload.", http.StatusBadRequest)
		return
	}

	receipt, err := h.Orchestrator.Submit(r.Context(), req)
	if err != nil {
		var verr *submit.ValidationError
		switch {
		case errors.As(err, &verr):
			jsonError(w, verr.Message, http.StatusBadRequest)
		case errors.Is(err, submit.ErrLinkSpent):
			jsonError(w, "This link has expired or was already used.", http.StatusForbidden)
		default:
			slog.Error("submit: processing failed", "error", err)
			jsonError(w, "Error processing form.", http.StatusInternalServerError)
		}
		return
	}

	jsonOK(w, map[string]interface{}{
		"success":      true,
		"submissionID": receipt.SubmissionID,
		"filename":     receipt.Filename,
	})
}

// formUpload buffers one optional file field. A missing field returns
// (nil, nil); the orchestrator decides which fields are required.
func formUpload(r *http.Request, field string) (*submit.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &submit.Upload{
		Filename:    header.Filename,
		ContentType: headerContentType(header),
		Data:        data,
	}, nil
}

func headerContentType(h *multipart.FileHeader) string {
	return h.Header.Get("Content-Type")
}
