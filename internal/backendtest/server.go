// Package backendtest is an in-memory implementation of the REST contract
// the SDK talks to: per-entity search/CRUD with the uniform envelope,
// bearer-token auth, the test-order extensions and the report endpoint.
// Integration tests run against it via httptest; `labadmin demo-server`
// serves it standalone.
package backendtest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/medlab/labadmin/internal/domain/account"
	"github.com/medlab/labadmin/internal/domain/doctor"
	"github.com/medlab/labadmin/internal/domain/indication"
	"github.com/medlab/labadmin/internal/domain/labtest"
	"github.com/medlab/labadmin/internal/domain/patient"
	"github.com/medlab/labadmin/internal/domain/report"
	"github.com/medlab/labadmin/internal/domain/testcategory"
	"github.com/medlab/labadmin/internal/domain/testgroup"
	"github.com/medlab/labadmin/internal/domain/unit"
	"github.com/medlab/labadmin/pkg/criteria"
)

// Server hosts the in-memory backend.
type Server struct {
	e        *echo.Echo
	secret   []byte
	tokenTTL time.Duration

	patients    *entityStore[patient.Patient]
	doctors     *entityStore[doctor.Doctor]
	units       *entityStore[unit.Unit]
	groups      *entityStore[testgroup.TestGroup]
	categories  *entityStore[testcategory.TestCategory]
	indications *entityStore[indication.Indication]
	tests       *entityStore[labtest.Test]
	users       *entityStore[account.User]

	orderLines *entityStore[labtest.TestIndication]
	details    *entityStore[labtest.TestDetail]
}

type Option func(*Server)

// WithTokenTTL controls the exp claim of issued tokens; expiry tests use a
// negative TTL to mint already-expired sessions.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("backendtest-signing-secret"),
		tokenTTL: time.Hour,
	}

	s.patients = newEntityStore(patient.Patient.WithID, func(p patient.Patient) map[string]string {
		return map[string]string{
			"code": p.Code, "fullName": p.FullName, "personalId": p.PersonalID,
			"phoneNo": p.PhoneNo, "address": p.Address, "birthday": p.Birthday,
		}
	})
	s.patients.vet = vetPatient
	s.doctors = newEntityStore(doctor.Doctor.WithID, func(d doctor.Doctor) map[string]string {
		return map[string]string{"fullName": d.FullName, "phoneNo": d.PhoneNo, "unitId": d.UnitID, "title": d.Title}
	})
	s.units = newEntityStore(unit.Unit.WithID, func(u unit.Unit) map[string]string {
		return map[string]string{"name": u.Name, "address": u.Address}
	})
	s.groups = newEntityStore(testgroup.TestGroup.WithID, func(g testgroup.TestGroup) map[string]string {
		return map[string]string{"name": g.Name}
	})
	s.categories = newEntityStore(testcategory.TestCategory.WithID, func(c testcategory.TestCategory) map[string]string {
		return map[string]string{"name": c.Name, "testGroupId": c.TestGroupID}
	})
	s.indications = newEntityStore(indication.Indication.WithID, func(i indication.Indication) map[string]string {
		return map[string]string{"name": i.Name, "testCategoryId": i.TestCategoryID}
	})
	s.tests = newEntityStore(labtest.Test.WithID, func(t labtest.Test) map[string]string {
		return map[string]string{
			"code": t.Code, "patientId": t.PatientID, "doctorId": t.DoctorID,
			"unitId": t.UnitID, "date": t.Date, "status": strconv.Itoa(t.Status),
		}
	})
	s.users = newEntityStore(account.User.WithID, func(u account.User) map[string]string {
		return map[string]string{"userName": u.UserName, "emailAddress": u.EmailAddress, "fullName": u.FullName}
	})
	s.users.vet = func(st *entityStore[account.User], u account.User) string {
		if other, ok := st.findLocked("userName", u.UserName); ok && other.ID != u.ID {
			return fmt.Sprintf("user name %s is already taken", u.UserName)
		}
		return ""
	}
	s.orderLines = newEntityStore(func(l labtest.TestIndication, id string) labtest.TestIndication {
		l.ID = id
		return l
	}, func(l labtest.TestIndication) map[string]string {
		return map[string]string{"testId": l.TestID, "indicationId": l.IndicationID}
	})
	s.details = newEntityStore(func(d labtest.TestDetail, id string) labtest.TestDetail {
		d.ID = id
		return d
	}, func(d labtest.TestDetail) map[string]string {
		return map[string]string{"testId": d.TestID, "indicationId": d.IndicationID}
	})

	for _, opt := range opts {
		opt(s)
	}

	s.e = echo.New()
	s.e.HideBanner = true
	s.routes()
	return s
}

func vetPatient(st *entityStore[patient.Patient], p patient.Patient) string {
	if other, ok := st.findLocked("personalId", p.PersonalID); ok && other.ID != p.ID {
		return fmt.Sprintf("a patient with personal id %s already exists", p.PersonalID)
	}
	return ""
}

// Handler returns the http.Handler for httptest servers.
func (s *Server) Handler() http.Handler { return s.e }

// Start serves on addr until the process exits; used by demo mode.
func (s *Server) Start(addr string) error { return s.e.Start(addr) }

func (s *Server) routes() {
	s.e.POST("/Account/Login", s.login)

	g := s.e.Group("", s.requireAuth)
	registerCRUD(g, patient.BasePath, s.patients)
	registerCRUD(g, doctor.BasePath, s.doctors)
	registerCRUD(g, unit.BasePath, s.units)
	registerCRUD(g, testgroup.BasePath, s.groups)
	registerCRUD(g, testcategory.BasePath, s.categories)
	registerCRUD(g, indication.BasePath, s.indications)
	registerCRUD(g, labtest.BasePath, s.tests)
	registerCRUD(g, account.BasePath, s.users)

	g.GET(patient.BasePath+"/by-code/:code", s.patientByCode)
	g.GET(patient.BasePath+"/by-personalid/:pid", s.patientByPersonalID)

	g.POST(labtest.BasePath+"/edit-indication", s.editIndications)
	g.GET(labtest.BasePath+"/indications-by-id/:id", s.indicationsByTest)
	g.GET(labtest.BasePath+"/details/:id", s.detailsByTest)
	g.PUT(labtest.BasePath+"/details", s.updateDetails)
	g.PUT(labtest.BasePath+"/status", s.updateStatus)

	g.GET(report.BasePath+"/:testName/:testID", s.report)
}

// -- envelope helpers --

func ok[T any](c echo.Context, data T) error {
	return c.JSON(http.StatusOK, criteria.Envelope[T]{IsSuccess: true, Data: data})
}

func fail(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, criteria.Envelope[struct{}]{IsSuccess: false, Message: msg})
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, criteria.Envelope[struct{}]{IsSuccess: false, Message: "not found"})
}

// -- auth --

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(h, prefix) {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		tok, err := jwt.Parse(strings.TrimPrefix(h, prefix), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		})
		if err != nil || !tok.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		return next(c)
	}
}

func (s *Server) login(c echo.Context) error {
	var req account.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, found := s.users.find("userName", req.UserName)
	if !found || u.Password != req.Password {
		return fail(c, "invalid user name or password")
	}
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"userName": u.UserName,
		"roles":    []string{u.Role},
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return ok(c, account.LoginResult{
		Token:    raw,
		UserName: u.UserName,
		FullName: u.FullName,
		Role:     u.Role,
	})
}

// -- generic CRUD --

func registerCRUD[T any](g *echo.Group, base string, st *entityStore[T]) {
	g.POST(base+"/search", func(c echo.Context) error {
		var crit criteria.Criteria
		if err := c.Bind(&crit); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if crit.PageIndex < 1 {
			crit.PageIndex = 1
		}
		if crit.PageSize < 1 {
			crit.PageSize = criteria.DefaultPageSize
		}
		return ok(c, st.search(crit))
	})
	g.GET(base+"/:id", func(c echo.Context) error {
		v, found := st.get(c.Param("id"))
		if !found {
			return notFound(c)
		}
		return ok(c, v)
	})
	g.POST(base, func(c echo.Context) error {
		var v T
		if err := c.Bind(&v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		created, msg := st.create(v)
		if msg != "" {
			return fail(c, msg)
		}
		return ok(c, created)
	})
	g.PUT(base+"/:id", func(c echo.Context) error {
		var v T
		if err := c.Bind(&v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		updated, found, msg := st.update(c.Param("id"), v)
		if !found {
			return notFound(c)
		}
		if msg != "" {
			return fail(c, msg)
		}
		return ok(c, updated)
	})
	g.DELETE(base+"/:id", func(c echo.Context) error {
		if !st.delete(c.Param("id")) {
			return notFound(c)
		}
		return ok(c, struct{}{})
	})
}

// -- patient extensions --

func (s *Server) patientByCode(c echo.Context) error {
	p, found := s.patients.find("code", c.Param("code"))
	if !found {
		return notFound(c)
	}
	return ok(c, p)
}

func (s *Server) patientByPersonalID(c echo.Context) error {
	p, found := s.patients.find("personalId", c.Param("pid"))
	if !found {
		return notFound(c)
	}
	return ok(c, p)
}

// -- test-order extensions --

func (s *Server) editIndications(c echo.Context) error {
	var req labtest.EditIndicationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, found := s.tests.get(req.TestID)
	if !found {
		return notFound(c)
	}

	// Resolve every id before touching the order; a rejected request must
	// leave the existing lines and result rows intact.
	inds := make([]indication.Indication, 0, len(req.IndicationIDs))
	for _, indID := range req.IndicationIDs {
		ind, found := s.indications.get(indID)
		if !found {
			return fail(c, fmt.Sprintf("unknown indication %s", indID))
		}
		inds = append(inds, ind)
	}

	// Replace the ordered set and keep result rows in step with it.
	for _, line := range s.linesOf(req.TestID) {
		s.orderLines.delete(line.ID)
	}
	for _, d := range s.detailsOf(req.TestID) {
		s.details.delete(d.ID)
	}

	var total float64
	var lines []labtest.TestIndication
	for _, ind := range inds {
		line, _ := s.orderLines.create(labtest.TestIndication{
			TestID:       req.TestID,
			IndicationID: ind.ID,
			Name:         ind.Name,
			Price:        ind.Price,
		})
		lines = append(lines, line)
		s.details.create(labtest.TestDetail{TestID: req.TestID, IndicationID: ind.ID})
		total += ind.Price
	}

	t.TotalPrice = total
	s.tests.update(t.ID, t)
	return ok(c, lines)
}

func (s *Server) indicationsByTest(c echo.Context) error {
	if _, found := s.tests.get(c.Param("id")); !found {
		return notFound(c)
	}
	return ok(c, s.linesOf(c.Param("id")))
}

func (s *Server) detailsByTest(c echo.Context) error {
	if _, found := s.tests.get(c.Param("id")); !found {
		return notFound(c)
	}
	return ok(c, s.detailsOf(c.Param("id")))
}

func (s *Server) updateDetails(c echo.Context) error {
	var req labtest.UpdateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, found := s.tests.get(req.TestID); !found {
		return notFound(c)
	}
	for _, incoming := range req.Details {
		for _, existing := range s.detailsOf(req.TestID) {
			if existing.IndicationID == incoming.IndicationID {
				existing.Result = incoming.Result
				existing.Note = incoming.Note
				s.details.update(existing.ID, existing)
			}
		}
	}
	return ok(c, s.detailsOf(req.TestID))
}

func (s *Server) updateStatus(c echo.Context) error {
	var req labtest.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, found := s.tests.get(req.TestID)
	if !found {
		return notFound(c)
	}
	if req.Status < labtest.StatusOrdered || req.Status > labtest.StatusCancelled {
		return fail(c, fmt.Sprintf("invalid status %d", req.Status))
	}
	t.Status = req.Status
	updated, _, _ := s.tests.update(t.ID, t)
	return ok(c, updated)
}

func (s *Server) linesOf(testID string) []labtest.TestIndication {
	page := s.orderLines.search(criteria.Criteria{
		Filters:   []criteria.Filter{{Field: "testId", Value: testID}},
		PageIndex: 1,
		PageSize:  criteria.MaxPageSize,
	})
	return page.Data
}

func (s *Server) detailsOf(testID string) []labtest.TestDetail {
	page := s.details.search(criteria.Criteria{
		Filters:   []criteria.Filter{{Field: "testId", Value: testID}},
		PageIndex: 1,
		PageSize:  criteria.MaxPageSize,
	})
	return page.Data
}

// -- report --

func (s *Server) report(c echo.Context) error {
	t, found := s.tests.get(c.Param("testID"))
	if !found {
		return notFound(c)
	}
	rep := report.Report{
		TestID:   t.ID,
		TestName: c.Param("testName"),
		TestCode: t.Code,
		Date:     t.Date,
	}
	if p, found := s.patients.get(t.PatientID); found {
		rep.PatientName = p.FullName
	}
	if d, found := s.doctors.get(t.DoctorID); found {
		rep.DoctorName = d.FullName
	}
	if u, found := s.units.get(t.UnitID); found {
		rep.UnitName = u.Name
	}
	byIndication := map[string]labtest.TestDetail{}
	for _, d := range s.detailsOf(t.ID) {
		byIndication[d.IndicationID] = d
	}
	for _, line := range s.linesOf(t.ID) {
		row := report.Row{IndicationName: line.Name}
		if ind, found := s.indications.get(line.IndicationID); found {
			row.Measure = ind.Measure
			row.ReferenceRange = ind.ReferenceRange
		}
		if d, found := byIndication[line.IndicationID]; found {
			row.Result = d.Result
			row.Note = d.Note
		}
		rep.Rows = append(rep.Rows, row)
	}
	return ok(c, rep)
}
