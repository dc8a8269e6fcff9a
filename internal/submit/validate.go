package submit

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries a user-facing message naming the exact violation.
// No side effects have happened by the time one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type formInput struct {
	Name          string `validate:"required"`
	Company       string `validate:"required"`
	Designation   string `validate:"required"`
	Amount        string `validate:"required"`
	PaymentMethod string `validate:"required"`
	CollectedBy   string `validate:"required"`
	CollectedOn   string `validate:"required,isodate"`
}

var fieldLabels = map[string]string{
	"Name":          "Name",
	"Company":       "Company",
	"Designation":   "Designation",
	"Amount":        "Amount",
	"PaymentMethod": "Payment method",
	"CollectedBy":   "Collected by",
	"CollectedOn":   "Collection date",
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return isoDate.MatchString(fl.Field().String())
	})
	return v
}

func (o *Orchestrator) validate(req Request) error {
	in := formInput{
		Name:          req.Fields.Name,
		Company:       req.Fields.Company,
		Designation:   req.Fields.Designation,
		Amount:        req.Fields.Amount,
		PaymentMethod: req.Fields.PaymentMethod,
		CollectedBy:   req.Fields.CollectedBy,
		CollectedOn:   req.Fields.CollectedOn,
	}
	if err := formValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldMessage(verrs[0])
		}
		return &ValidationError{Message: "Invalid form data."}
	}

	if req.Screenshot == nil || len(req.Screenshot.Data) == 0 {
		return &ValidationError{Message: "Payment screenshot is required."}
	}
	if err := o.checkFile(req.Screenshot); err != nil {
		return err
	}
	if req.Signature != nil && len(req.Signature.Data) > 0 {
		if err := o.checkFile(req.Signature); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) checkFile(u *Upload) error {
	if int64(len(u.Data)) > o.MaxFileBytes {
		return &ValidationError{
			Message: fmt.Sprintf("File is too large (Max %dMB).", o.MaxFileBytes/(1024*1024)),
		}
	}
	switch u.ContentType {
	case "image/jpeg", "image/png":
		return nil
	}
	return &ValidationError{Message: "Only JPEG or PNG images are allowed."}
}

func fieldMessage(fe validator.FieldError) *ValidationError {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	if fe.Tag() == "isodate" {
		return &ValidationError{Message: "Collection date must be in YYYY-MM-DD format."}
	}
	return &ValidationError{Message: label + " is required."}
}
