package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/medlab/labadmin/pkg/criteria"
)

type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) Token() (string, error) { return s.token, s.err }

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func envelopeJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSearchSendsSanitizedCriteriaAndBearer(t *testing.T) {
	var gotAuth string
	var gotCrit criteria.Criteria
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Patient/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotCrit); err != nil {
			t.Error(err)
		}
		w.Write(envelopeJSON(t, criteria.Page[item]{
			IsSuccess: true,
			Data: criteria.PageData[item]{
				Data:        []item{{ID: "1", Name: "a"}},
				CurrentPage: 1, TotalPages: 1, TotalRows: 1,
			},
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(stubTokens{token: "tok-123"}))
	crit := criteria.Default()
	crit.Filters = []criteria.Filter{
		{Field: "fullName", Value: "a"},
		{Field: "code", Value: ""},
	}

	page, err := Search[item](context.Background(), c, "/Patient", crit)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != "1" {
		t.Errorf("unexpected page: %+v", page)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if len(gotCrit.Filters) != 1 || gotCrit.Filters[0].Field != "fullName" {
		t.Errorf("empty-valued filter was sent: %+v", gotCrit.Filters)
	}
}

func TestBusinessErrorFromEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelopeJSON(t, criteria.Envelope[item]{IsSuccess: false, Message: "duplicate code"}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := PostOne[item](context.Background(), c, "/Unit", item{Name: "x"})
	var be *BusinessError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BusinessError", err)
	}
	if be.Message != "duplicate code" {
		t.Errorf("message = %q", be.Message)
	}
	if !IsBusiness(err) {
		t.Error("IsBusiness = false")
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := GetOne[item](context.Background(), c, "/Doctor/does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTransportErrorOnNon2xxWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := GetOne[item](context.Background(), c, "/Doctor/1")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Status != http.StatusBadGateway {
		t.Errorf("status = %d", te.Status)
	}
}

func TestExpiredSessionShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	expired := errors.New("session expired")
	c := NewClient(srv.URL, WithTokenSource(stubTokens{err: expired}))

	if _, err := GetOne[item](context.Background(), c, "/Patient/1"); !errors.Is(err, expired) {
		t.Fatalf("err = %v, want the token source error", err)
	}
	if _, err := Search[item](context.Background(), c, "/Patient", criteria.Default()); !errors.Is(err, expired) {
		t.Fatalf("search err = %v, want the token source error", err)
	}
	if err := Delete(context.Background(), c, "/Patient/1"); !errors.Is(err, expired) {
		t.Fatalf("delete err = %v, want the token source error", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("backend was called %d times for an expired session", n)
	}
}

func TestDeleteDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.Write(envelopeJSON(t, criteria.Envelope[json.RawMessage]{IsSuccess: true}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := Delete(context.Background(), c, "/Unit/1"); err != nil {
		t.Fatal(err)
	}
}

func TestNoHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(envelopeJSON(t, criteria.Envelope[item]{IsSuccess: true, Data: item{ID: "1"}}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(stubTokens{}))
	if _, err := GetOne[item](context.Background(), c, "/Patient/1"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none when logged out", gotAuth)
	}
}
