package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/form"
	"github.com/medlab/labadmin/internal/platform/nav"
	"github.com/medlab/labadmin/internal/platform/state"
)

type patient struct {
	ID         string `json:"id,omitempty"`
	FullName   string `json:"fullName" validate:"required"`
	PersonalID string `json:"personalId" validate:"required,len=12"`
	PhoneNo    string `json:"phoneNo" validate:"required,len=10,numeric"`
	Birthday   string `json:"birthday" validate:"required"`
	Address    string `json:"address"`
	Sex        int    `json:"sex"`
}

func patientSchema() *form.Schema[patient] {
	return form.NewSchema(
		func() patient { return patient{} },
		form.Field{Name: "fullName", Label: "Full name", Required: true},
		form.Field{Name: "personalId", Label: "Personal ID", Required: true, Len: 12},
		form.Field{Name: "phoneNo", Label: "Phone number", Required: true, Len: 10},
		form.Field{Name: "birthday", Label: "Birthday", Required: true},
		form.Field{Name: "address", Label: "Address"},
	)
}

type fakeGateway struct {
	byID      map[string]patient
	created   []patient
	updated   []patient
	getErr    error
	createErr error
	updateErr error
}

func (f *fakeGateway) GetByID(_ context.Context, id string) (*patient, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &p, nil
}

func (f *fakeGateway) Create(_ context.Context, v patient) (*patient, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	v.ID = "generated-id"
	f.created = append(f.created, v)
	return &v, nil
}

func (f *fakeGateway) Update(_ context.Context, v patient) (*patient, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, v)
	return &v, nil
}

func newController(gw *fakeGateway, onSaved func()) *Controller[patient] {
	return NewController(Config[patient]{
		Gateway:   gw,
		Schema:    patientSchema(),
		Backstack: nav.New("/"),
		WithID: func(p patient, id string) patient {
			p.ID = id
			return p
		},
		OnSaved: onSaved,
		Logger:  zerolog.Nop(),
	})
}

func validForm() patient {
	return patient{
		FullName:   "Nguyen Van A",
		PersonalID: "123456789012",
		PhoneNo:    "0912345678",
		Birthday:   "2000-01-01",
		Address:    "Hanoi",
		Sex:        0,
	}
}

func TestCreateFlow(t *testing.T) {
	gw := &fakeGateway{}
	saved := 0
	c := newController(gw, func() { saved++ })

	if err := c.Open("/patients"); err != nil {
		t.Fatal(err)
	}
	if c.Phase() != OpenNew {
		t.Fatalf("phase = %v", c.Phase())
	}
	c.SetForm(validForm())

	loc, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loc != "/patients" {
		t.Errorf("returned location = %q", loc)
	}
	if c.Phase() != ClosedAfterSave {
		t.Errorf("phase = %v", c.Phase())
	}
	if saved != 1 {
		t.Errorf("OnSaved fired %d times", saved)
	}
	if len(gw.created) != 1 || len(gw.updated) != 0 {
		t.Fatalf("created=%d updated=%d", len(gw.created), len(gw.updated))
	}
	got := gw.created[0]
	want := validForm()
	want.ID = "generated-id" // assigned by the backend
	if got != want {
		t.Errorf("created entity = %+v, want %+v", got, want)
	}
	if o, _ := c.Mutation().Outcome(); o != state.Succeeded {
		t.Errorf("mutation outcome = %v", o)
	}
	// Form reset to defaults after save.
	if c.Form() != (patient{}) {
		t.Errorf("form not reset: %+v", c.Form())
	}
}

func TestValidationFailureSkipsNetwork(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw, nil)
	_ = c.Open("/patients")

	f := validForm()
	f.PhoneNo = "123"
	c.SetForm(f)

	_, err := c.Submit(context.Background())
	var ferrs form.Errors
	if !errors.As(err, &ferrs) {
		t.Fatalf("err = %T(%v), want form.Errors", err, err)
	}
	if _, ok := ferrs["phoneNo"]; !ok {
		t.Errorf("no field error for phoneNo: %v", ferrs)
	}
	if len(gw.created)+len(gw.updated) != 0 {
		t.Error("network call issued despite validation failure")
	}
	// Session stays open, mutation signal untouched.
	if c.Phase() != OpenNew {
		t.Errorf("phase = %v", c.Phase())
	}
	if o, _ := c.Mutation().Outcome(); o != state.Unset {
		t.Errorf("mutation outcome = %v, want Unset", o)
	}
}

func TestEditExistingPopulatesFormWithoutID(t *testing.T) {
	existing := validForm()
	existing.ID = "p-1"
	gw := &fakeGateway{byID: map[string]patient{"p-1": existing}}
	c := newController(gw, nil)

	if err := c.OpenExisting(context.Background(), "p-1", "/patients"); err != nil {
		t.Fatal(err)
	}
	got := c.Form()
	if got.ID != "" {
		t.Errorf("id copied into form: %q", got.ID)
	}
	if got.FullName != existing.FullName || got.PersonalID != existing.PersonalID {
		t.Errorf("form not populated: %+v", got)
	}

	loc, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loc != "/patients" {
		t.Errorf("location = %q", loc)
	}
	if len(gw.updated) != 1 || len(gw.created) != 0 {
		t.Fatalf("created=%d updated=%d, want update path", len(gw.created), len(gw.updated))
	}
	if gw.updated[0].ID != "p-1" {
		t.Errorf("update sent id %q", gw.updated[0].ID)
	}
}

func TestOpenExistingFetchFailureLeavesDefaults(t *testing.T) {
	gw := &fakeGateway{getErr: errors.New("backend down")}
	c := newController(gw, nil)

	err := c.OpenExisting(context.Background(), "p-9", "/patients")
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if c.Form() != (patient{}) {
		t.Errorf("form not at defaults: %+v", c.Form())
	}
	// Closing is not blocked.
	if loc := c.Cancel(); loc != "/patients" {
		t.Errorf("Cancel = %q", loc)
	}
}

func TestSubmitFailureStaysOpenForRetry(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("duplicate personal id")}
	c := newController(gw, nil)
	_ = c.Open("/patients")
	c.SetForm(validForm())

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}
	if c.Phase() != OpenNew {
		t.Fatalf("phase = %v, want still open", c.Phase())
	}
	if o, err := c.Mutation().Outcome(); o != state.Failed || err == nil {
		t.Errorf("outcome = %v, %v", o, err)
	}

	// Retry succeeds once the backend accepts.
	gw.createErr = nil
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Phase() != ClosedAfterSave {
		t.Errorf("phase = %v", c.Phase())
	}
}

func TestCancelReturnsBackground(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw, nil)
	_ = c.Open("/units")
	c.SetForm(validForm())

	if loc := c.Cancel(); loc != "/units" {
		t.Fatalf("Cancel = %q", loc)
	}
	if c.Phase() != Closed {
		t.Errorf("phase = %v", c.Phase())
	}
	if c.Form() != (patient{}) {
		t.Errorf("form survived cancel: %+v", c.Form())
	}
}

func TestSecondOverlayRejected(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw, nil)
	_ = c.Open("/patients")
	if err := c.Open("/patients"); !errors.Is(err, nav.ErrOverlayOpen) {
		t.Fatalf("second Open = %v, want ErrOverlayOpen", err)
	}
}
