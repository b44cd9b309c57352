package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestConfirm(t *testing.T) {
	cases := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"no\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		stdin = strings.NewReader(tc.answer)
		if got := confirm("continue?"); got != tc.want {
			t.Errorf("confirm with %q = %v, want %v", tc.answer, got, tc.want)
		}
	}
}

func TestRemoveTeamMember_DeclinedPromptIssuesNoRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	t.Setenv("CALCULADRINK_API", srv.URL)

	stdin = strings.NewReader("n\n")
	removeTeamMember([]string{"user-1"})
	if got := calls.Load(); got != 0 {
		t.Fatalf("declined prompt issued %d requests, want 0", got)
	}

	stdin = strings.NewReader("y\n")
	removeTeamMember([]string{"user-1"})
	if got := calls.Load(); got != 1 {
		t.Fatalf("confirmed prompt issued %d requests, want 1", got)
	}
}

func TestSetStatus_DeclinedPromptIssuesNoRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	t.Setenv("CALCULADRINK_API", srv.URL)

	stdin = strings.NewReader("n\n")
	setStatus([]string{"c1"}, "suspended", "suspend the account")
	if got := calls.Load(); got != 0 {
		t.Fatalf("declined prompt issued %d requests, want 0", got)
	}
}
