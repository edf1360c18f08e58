package backendtest

import (
	"github.com/medlab/labadmin/internal/domain/account"
	"github.com/medlab/labadmin/internal/domain/doctor"
	"github.com/medlab/labadmin/internal/domain/indication"
	"github.com/medlab/labadmin/internal/domain/labtest"
	"github.com/medlab/labadmin/internal/domain/patient"
	"github.com/medlab/labadmin/internal/domain/testcategory"
	"github.com/medlab/labadmin/internal/domain/testgroup"
	"github.com/medlab/labadmin/internal/domain/unit"
)

// Seed helpers insert fixtures directly, bypassing auth; the returned copy
// carries the assigned id.

func (s *Server) SeedUser(u account.User) account.User {
	created, _ := s.users.create(u)
	return created
}

func (s *Server) SeedPatient(p patient.Patient) patient.Patient {
	created, _ := s.patients.create(p)
	return created
}

func (s *Server) SeedDoctor(d doctor.Doctor) doctor.Doctor {
	created, _ := s.doctors.create(d)
	return created
}

func (s *Server) SeedUnit(u unit.Unit) unit.Unit {
	created, _ := s.units.create(u)
	return created
}

func (s *Server) SeedTestGroup(g testgroup.TestGroup) testgroup.TestGroup {
	created, _ := s.groups.create(g)
	return created
}

func (s *Server) SeedTestCategory(c testcategory.TestCategory) testcategory.TestCategory {
	created, _ := s.categories.create(c)
	return created
}

func (s *Server) SeedIndication(i indication.Indication) indication.Indication {
	created, _ := s.indications.create(i)
	return created
}

func (s *Server) SeedTest(t labtest.Test) labtest.Test {
	created, _ := s.tests.create(t)
	return created
}

// SeedDemo loads a small coherent data set for the demo server: an admin
// login, one unit with a doctor, two patients and a biochemistry panel.
func (s *Server) SeedDemo() {
	s.SeedUser(account.User{
		UserName:     "admin",
		Password:     "admin",
		EmailAddress: "admin@example.com",
		FullName:     "Administrator",
		Role:         "admin",
	})

	u := s.SeedUnit(unit.Unit{Name: "Internal Medicine", Address: "12 Trang Thi, Hanoi"})
	d := s.SeedDoctor(doctor.Doctor{FullName: "Tran Thi B", PhoneNo: "0987654321", UnitID: u.ID, Title: "MD"})

	p1 := s.SeedPatient(patient.Patient{
		Code: "BN0001", FullName: "Nguyen Van A", PersonalID: "123456789012",
		PhoneNo: "0912345678", Birthday: "2000-01-01", Address: "Hanoi", Sex: patient.SexMale,
	})
	s.SeedPatient(patient.Patient{
		Code: "BN0002", FullName: "Le Thi C", PersonalID: "210987654321",
		PhoneNo: "0911222333", Birthday: "1985-06-15", Address: "Da Nang", Sex: patient.SexFemale,
	})

	g := s.SeedTestGroup(testgroup.TestGroup{Name: "Biochemistry"})
	cat := s.SeedTestCategory(testcategory.TestCategory{Name: "Blood glucose", TestGroupID: g.ID})
	s.SeedIndication(indication.Indication{
		Name: "Fasting glucose", TestCategoryID: cat.ID, Price: 45000,
		Measure: "mmol/L", ReferenceRange: "3.9-5.6",
	})
	s.SeedIndication(indication.Indication{
		Name: "HbA1c", TestCategoryID: cat.ID, Price: 160000,
		Measure: "%", ReferenceRange: "4.0-5.6",
	})

	s.SeedTest(labtest.Test{
		Code: "XN0001", PatientID: p1.ID, DoctorID: d.ID, UnitID: u.ID,
		Date: "2024-03-01", Status: labtest.StatusOrdered,
	})
}
