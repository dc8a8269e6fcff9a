// Package submit drives one submission attempt through its stages:
// validate, consume the token, stamp both templates, persist the user copy,
// dispatch the durable uploads, acknowledge. Correctness under concurrent
// attempts on one token rests entirely on the store's atomic Consume; no
// in-process lock is held across any of the stages.
package submit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/eventops/sponsorgate/internal/model"
	"github.com/eventops/sponsorgate/internal/stamp"
)

// ErrLinkSpent reports that the access token was missing or already
// consumed. It is distinct from validation failures: by the time it can
// occur, the input has already been accepted.
var ErrLinkSpent = errors.New("link expired or already used")

// TokenConsumer is the atomic consume-or-reject boundary. ok is false when
// the token is missing or already used; err is an infrastructure failure.
type TokenConsumer interface {
	Consume(value, submitterName string) (ok bool, err error)
}

type Stamper interface {
	Stamp(kind stamp.Kind, f model.SubmissionFields, signature []byte) ([]byte, error)
}

// Dispatcher sends an artifact to remote storage without blocking the
// caller. Behind this interface a bounded retry queue could be added later
// without touching the orchestrator's control flow.
type Dispatcher interface {
	Dispatch(name, folder, contentType string, data []byte)
}

type DownloadStore interface {
	Put(filename string, data []byte) error
}

// Upload is one file from the multipart form, fully buffered.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request is the sponsor-supplied payload for one attempt.
type Request struct {
	Token      string
	Fields     model.SubmissionFields
	Signature  *Upload // optional
	Screenshot *Upload // required
}

type Orchestrator struct {
	Tokens     TokenConsumer
	Stamper    Stamper
	Dispatcher Dispatcher
	Downloads  DownloadStore

	UserFolder     string
	OfficialFolder string
	MaxFileBytes   int64

	// ConsumeAfterGenerate flips the consume/generate ordering. The default
	// (false) consumes first, accepting that a stamping failure afterwards
	// wastes the token; true generates first, accepting a duplicate-artifact
	// window instead.
	ConsumeAfterGenerate bool
}

// Submit runs the full state machine for one attempt. The token is consumed
// before any stamping or upload work unless ConsumeAfterGenerate is set.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*model.Receipt, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	if !o.ConsumeAfterGenerate {
		if err := o.consume(req); err != nil {
			return nil, err
		}
	}

	submissionID, err := NewSubmissionID()
	if err != nil {
		return nil, fmt.Errorf("submission id: %w", err)
	}
	filename := DeriveFilename(req.Fields.Name, submissionID)

	var signature []byte
	if req.Signature != nil {
		signature = req.Signature.Data
	}

	userPDF, err := o.Stamper.Stamp(stamp.KindUser, req.Fields, signature)
	if err != nil {
		return nil, fmt.Errorf("stamp user copy: %w", err)
	}
	officialPDF, err := o.Stamper.Stamp(stamp.KindOfficial, req.Fields, signature)
	if err != nil {
		return nil, fmt.Errorf("stamp official copy: %w", err)
	}

	if o.ConsumeAfterGenerate {
		if err := o.consume(req); err != nil {
			return nil, err
		}
	}

	if err := o.Downloads.Put(filename, userPDF); err != nil {
		return nil, fmt.Errorf("persist user copy: %w", err)
	}
	slog.Info("generated user copy", "filename", filename, "submission", submissionID)

	screenshotName := fmt.Sprintf("%s_%s_screenshot%s",
		SanitizeName(req.Fields.Name), submissionID, filepath.Ext(req.Screenshot.Filename))

	o.Dispatcher.Dispatch(filename, o.UserFolder, "application/pdf", userPDF)
	o.Dispatcher.Dispatch(filename, o.OfficialFolder, "application/pdf", officialPDF)
	o.Dispatcher.Dispatch(screenshotName, o.OfficialFolder, req.Screenshot.ContentType, req.Screenshot.Data)

	return &model.Receipt{SubmissionID: submissionID, Filename: filename}, nil
}

func (o *Orchestrator) consume(req Request) error {
	ok, err := o.Tokens.Consume(req.Token, req.Fields.Name)
	if err != nil {
		return fmt.Errorf("consume token: %w", err)
	}
	if !ok {
		return ErrLinkSpent
	}
	return nil
}

var nameSafe = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeName strips every character outside [A-Za-z0-9], replacing it
// with an underscore. An empty name becomes "Sponsor".
func SanitizeName(name string) string {
	if name == "" {
		return "Sponsor"
	}
	return nameSafe.ReplaceAllString(name, "_")
}

// NewSubmissionID returns the human-facing receipt code: "SPONSOR-" plus
// eight uppercase hex characters from fresh random bytes.
func NewSubmissionID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "SPONSOR-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// DeriveFilename builds the user-copy filename. Uniqueness comes from the
// submission ID; the sanitized name keeps it recognizable.
func DeriveFilename(name, submissionID string) string {
	return SanitizeName(name) + "_" + submissionID + ".pdf"
}
