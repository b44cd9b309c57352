package domain

import "testing"

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusRequested, StatusPendingApproval},
		{StatusPendingApproval, StatusWaitingPayment},
		{StatusPendingApproval, StatusActive},
		{StatusWaitingPayment, StatusActive},
		{StatusActive, StatusSuspended},
		{StatusSuspended, StatusActive},
	}
	for _, tr := range allowed {
		if !CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusActive, StatusRequested},
		{StatusActive, StatusPendingApproval},
		{StatusWaitingPayment, StatusPendingApproval},
		{StatusSuspended, StatusWaitingPayment},
		{StatusRequested, StatusActive},
		{StatusActive, StatusActive},
	}
	for _, tr := range denied {
		if CanTransition(tr.from, tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestAccessGating(t *testing.T) {
	if StatusRequested.CanAccess() {
		t.Fatalf("requested accounts must not have access")
	}
	if StatusPendingApproval.CanAccess() {
		t.Fatalf("pending_approval accounts must not have access")
	}
	if !StatusActive.CanAccess() {
		t.Fatalf("active accounts must have access")
	}
}

func TestRoleValidity(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleBartender} {
		if !r.Valid() {
			t.Errorf("role %s should be valid", r)
		}
	}
	if Role("owner").Valid() {
		t.Fatalf("unrecognized role must not validate")
	}
}

func TestNormalizeDocument(t *testing.T) {
	if got := NormalizeDocument("12.345.678/0001-90"); got != "12345678000190" {
		t.Fatalf("unexpected normalized document: %s", got)
	}
	if got := NormalizeEmail("  Bar@Example.COM "); got != "bar@example.com" {
		t.Fatalf("unexpected normalized email: %s", got)
	}
}
