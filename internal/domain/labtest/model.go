// Package labtest manages test orders: the aggregate of a patient, a
// referring doctor, the ordered indications and their result details.
package labtest

import "github.com/medlab/labadmin/internal/platform/form"

// Order status codes as the backend stores them.
const (
	StatusOrdered   = 0
	StatusSampling  = 1
	StatusResulted  = 2
	StatusCancelled = 3
)

// Test is one test order. TotalPrice is computed by the backend from the
// ordered indications.
type Test struct {
	ID         string  `json:"id,omitempty"`
	Code       string  `json:"code,omitempty"`
	PatientID  string  `json:"patientId" validate:"required"`
	DoctorID   string  `json:"doctorId" validate:"required"`
	UnitID     string  `json:"unitId,omitempty"`
	Date       string  `json:"date" validate:"required"`
	Status     int     `json:"status" validate:"oneof=0 1 2 3"`
	Note       string  `json:"note,omitempty"`
	TotalPrice float64 `json:"totalPrice,omitempty"`
}

func (t Test) WithID(id string) Test {
	t.ID = id
	return t
}

// TestIndication links one ordered indication to a test, with the price
// captured at order time.
type TestIndication struct {
	ID           string  `json:"id,omitempty"`
	TestID       string  `json:"testId"`
	IndicationID string  `json:"indicationId"`
	Name         string  `json:"name,omitempty"`
	Price        float64 `json:"price,omitempty"`
}

// TestDetail is one result row of a test order.
type TestDetail struct {
	ID           string `json:"id,omitempty"`
	TestID       string `json:"testId"`
	IndicationID string `json:"indicationId"`
	Result       string `json:"result,omitempty"`
	Note         string `json:"note,omitempty"`
}

// EditIndicationsRequest replaces the ordered indication set of a test.
type EditIndicationsRequest struct {
	TestID        string   `json:"testId" validate:"required"`
	IndicationIDs []string `json:"indicationIds" validate:"required,min=1"`
}

// UpdateDetailsRequest writes result rows back to a test.
type UpdateDetailsRequest struct {
	TestID  string       `json:"testId" validate:"required"`
	Details []TestDetail `json:"details" validate:"required,min=1"`
}

// UpdateStatusRequest moves a test order through its workflow.
type UpdateStatusRequest struct {
	TestID string `json:"testId" validate:"required"`
	Status int    `json:"status" validate:"oneof=0 1 2 3"`
}

func Schema() *form.Schema[Test] {
	return form.NewSchema(
		func() Test { return Test{Status: StatusOrdered} },
		form.Field{Name: "patientId", Label: "Patient", Required: true},
		form.Field{Name: "doctorId", Label: "Doctor", Required: true},
		form.Field{Name: "unitId", Label: "Unit"},
		form.Field{Name: "date", Label: "Date", Required: true},
		form.Field{Name: "status", Label: "Status"},
		form.Field{Name: "note", Label: "Note"},
	)
}
