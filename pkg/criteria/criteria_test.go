package criteria

import (
	"encoding/json"
	"testing"
)

func TestSanitizedDropsEmptyValues(t *testing.T) {
	c := Default()
	c.Filters = []Filter{
		{Field: "fullName", Value: "an"},
		{Field: "code", Value: ""},
		{Field: "phoneNo", Value: "0912"},
	}

	got := c.Sanitized()
	if len(got.Filters) != 2 {
		t.Fatalf("expected 2 filters after sanitize, got %d", len(got.Filters))
	}
	if got.Filters[0].Field != "fullName" || got.Filters[1].Field != "phoneNo" {
		t.Errorf("filter order not preserved: %+v", got.Filters)
	}
	// original untouched
	if len(c.Filters) != 3 {
		t.Errorf("Sanitized mutated the receiver")
	}
}

func TestSanitizedEmptyFilters(t *testing.T) {
	c := Default()
	got := c.Sanitized()
	if len(got.Filters) != 0 {
		t.Fatalf("expected no filters, got %d", len(got.Filters))
	}
	if got.PageIndex != 1 || got.PageSize != DefaultPageSize {
		t.Errorf("paging changed by sanitize: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		crit    Criteria
		wantErr bool
	}{
		{"default ok", Default(), false},
		{"zero page index", Criteria{PageIndex: 0, PageSize: 30}, true},
		{"zero page size", Criteria{PageIndex: 1, PageSize: 0}, true},
		{"large page", Criteria{PageIndex: 999, PageSize: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.crit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCriteriaJSONShape(t *testing.T) {
	c := Criteria{
		Filters:   []Filter{{Field: "fullName", Value: "a"}},
		SortBy:    SortBy{Field: "createdAt", Ascending: false},
		PageIndex: 2,
		PageSize:  50,
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"filters":[{"fieldName":"fullName","value":"a"}],"sortBy":{"fieldName":"createdAt","ascending":false},"pageIndex":2,"pageSize":50}`
	if string(b) != want {
		t.Errorf("wire shape mismatch:\n got %s\nwant %s", b, want)
	}
}

func TestEnvelopeDecode(t *testing.T) {
	raw := `{"isSuccess":true,"message":"","data":{"data":[{"id":"1"}],"currentPage":1,"totalPages":3,"totalRows":61}}`
	type row struct {
		ID string `json:"id"`
	}
	var page Page[row]
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		t.Fatal(err)
	}
	if !page.IsSuccess {
		t.Error("expected isSuccess")
	}
	if len(page.Data.Data) != 1 || page.Data.TotalRows != 61 || page.Data.TotalPages != 3 {
		t.Errorf("unexpected page data: %+v", page.Data)
	}
}
