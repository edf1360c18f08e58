// Package patient manages the patient registry: CRUD, search and the
// code/personal-id lookups used when registering a test order.
package patient

import "github.com/medlab/labadmin/internal/platform/form"

// Sex codes as the backend stores them.
const (
	SexMale   = 0
	SexFemale = 1
)

// Patient is one registered patient. ID and Code are assigned by the
// backend and never edited.
type Patient struct {
	ID         string `json:"id,omitempty"`
	Code       string `json:"code,omitempty"`
	FullName   string `json:"fullName" validate:"required"`
	PersonalID string `json:"personalId" validate:"required,len=12"`
	PhoneNo    string `json:"phoneNo" validate:"required,len=10,numeric"`
	Birthday   string `json:"birthday" validate:"required"`
	Address    string `json:"address"`
	Sex        int    `json:"sex" validate:"oneof=0 1"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
}

// WithID returns a copy with the id replaced.
func (p Patient) WithID(id string) Patient {
	p.ID = id
	return p
}

// Schema declares the patient edit form: defaults for a new patient plus
// the per-field rules enforced before submit.
func Schema() *form.Schema[Patient] {
	return form.NewSchema(
		func() Patient { return Patient{Sex: SexMale} },
		form.Field{Name: "fullName", Label: "Full name", Required: true},
		form.Field{Name: "personalId", Label: "Personal ID", Required: true, Len: 12},
		form.Field{Name: "phoneNo", Label: "Phone number", Required: true, Len: 10},
		form.Field{Name: "birthday", Label: "Birthday", Required: true},
		form.Field{Name: "address", Label: "Address"},
		form.Field{Name: "sex", Label: "Sex"},
		form.Field{Name: "email", Label: "Email"},
	)
}
