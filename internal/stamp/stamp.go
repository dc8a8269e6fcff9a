// Package stamp overlays submission data onto fixed PDF templates. It holds
// no file or network handles: template and font bytes are injected once at
// construction and every Stamp call works purely in memory.
package stamp

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signintech/gopdf"

	"github.com/eventops/sponsorgate/internal/model"
)

const (
	fontName = "stamp"
	fontSize = 10
)

type Stamper struct {
	templates map[Kind][]byte
	font      []byte
}

func New(userTemplate, officialTemplate, font []byte) *Stamper {
	return &Stamper{
		templates: map[Kind][]byte{
			KindUser:     userTemplate,
			KindOfficial: officialTemplate,
		},
		font: font,
	}
}

// Stamp imports page one of the template for kind, draws each field at its
// configured anchor and the signature image (if any) at the kind's box, and
// returns the finished document. The template content is only overlaid,
// never reflowed.
func (s *Stamper) Stamp(kind Kind, f model.SubmissionFields, signature []byte) ([]byte, error) {
	tpl, ok := s.templates[kind]
	if !ok {
		return nil, fmt.Errorf("stamp: unknown template kind %q", kind)
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFontData(fontName, s.font); err != nil {
		return nil, fmt.Errorf("stamp: load font: %w", err)
	}

	rs := io.ReadSeeker(bytes.NewReader(tpl))
	tplID := pdf.ImportPageStream(&rs, 1, "/MediaBox")
	if tplID <= 0 {
		return nil, fmt.Errorf("stamp: import %s template page", kind)
	}
	pdf.AddPage()
	pdf.UseImportedTemplate(tplID, 0, 0, gopdf.PageSizeA4.W, gopdf.PageSizeA4.H)

	if err := pdf.SetFont(fontName, "", fontSize); err != nil {
		return nil, fmt.Errorf("stamp: set font: %w", err)
	}
	pdf.SetTextColor(0, 0, 0)

	for field, text := range fieldText(f) {
		anchor := textAnchors[kind][field]
		pdf.SetX(anchor.X)
		pdf.SetY(anchor.Y)
		if err := pdf.Cell(nil, text); err != nil {
			return nil, fmt.Errorf("stamp: draw %s: %w", field, err)
		}
	}

	if len(signature) > 0 {
		holder, err := gopdf.ImageHolderByBytes(signature)
		if err != nil {
			return nil, fmt.Errorf("stamp: decode signature: %w", err)
		}
		box := signatureBoxes[kind]
		if err := pdf.ImageByHolder(holder, box.X, box.Y, &gopdf.Rect{W: box.W, H: box.H}); err != nil {
			return nil, fmt.Errorf("stamp: draw signature: %w", err)
		}
	}

	out, err := pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("stamp: encode pdf: %w", err)
	}
	return out, nil
}

// fieldText maps layout slots to their rendered values. Amount and payment
// method share one slot, rendered as "5000 (UPI)".
func fieldText(f model.SubmissionFields) map[Field]string {
	return map[Field]string{
		FieldName:        f.Name,
		FieldCompany:     f.Company,
		FieldDesignation: f.Designation,
		FieldAmount:      fmt.Sprintf("%s (%s)", f.Amount, f.PaymentMethod),
		FieldCollectedBy: f.CollectedBy,
		FieldCollectedOn: f.CollectedOn,
	}
}
