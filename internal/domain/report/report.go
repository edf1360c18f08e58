// Package report fetches the printable result report of a finished test.
package report

import (
	"context"
	"net/url"

	"github.com/medlab/labadmin/internal/platform/rest"
)

const BasePath = "/Report"

// Row is one indication result line on a report.
type Row struct {
	IndicationName string `json:"indicationName"`
	Result         string `json:"result"`
	Measure        string `json:"measure,omitempty"`
	ReferenceRange string `json:"referenceRange,omitempty"`
	Note           string `json:"note,omitempty"`
}

// Report is the assembled result document for one test order.
type Report struct {
	TestID      string `json:"testId"`
	TestName    string `json:"testName"`
	TestCode    string `json:"testCode,omitempty"`
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName,omitempty"`
	UnitName    string `json:"unitName,omitempty"`
	Date        string `json:"date,omitempty"`
	Rows        []Row  `json:"rows"`
}

type Gateway struct {
	c *rest.Client
}

func NewGateway(c *rest.Client) *Gateway { return &Gateway{c: c} }

// Fetch retrieves the report for a test, addressed by test name and id as
// the backend expects. Both segments are path-escaped; test names may
// contain spaces or slashes.
func (g *Gateway) Fetch(ctx context.Context, testName, testID string) (*Report, error) {
	return rest.GetOne[Report](ctx, g.c, BasePath+"/"+url.PathEscape(testName)+"/"+url.PathEscape(testID))
}
