package model

import "testing"

func TestNew_InitialState(t *testing.T) {
	t.Parallel()

	m := New("254700000000", TypeSMS, "greeting", "Hello")

	if m.Status != Pending {
		t.Fatalf("expected status %q, got %q", Pending, m.Status)
	}
	if m.Retries != 0 {
		t.Fatalf("expected retries 0, got %d", m.Retries)
	}
	if m.ID != 0 {
		t.Fatalf("expected unassigned id, got %d", m.ID)
	}
	if m.Recipient != "254700000000" || m.Content != "Hello" || m.Subject != "greeting" {
		t.Fatalf("unexpected field copy: %+v", m)
	}
}

func TestMarkSent(t *testing.T) {
	t.Parallel()

	m := New("254700000000", TypeSMS, "", "Hello")
	m.MarkSent()

	if m.Status != Sent {
		t.Fatalf("expected status %q, got %q", Sent, m.Status)
	}
	if m.Retries != 0 {
		t.Fatalf("expected retries untouched, got %d", m.Retries)
	}
}

func TestRecordFailure_Uncapped(t *testing.T) {
	t.Parallel()

	m := New("254700000000", TypeSMS, "", "Hello")

	for i := 1; i <= 5; i++ {
		m.RecordFailure(0)
		if m.Retries != i {
			t.Fatalf("expected retries %d, got %d", i, m.Retries)
		}
		if m.Status != Pending {
			t.Fatalf("expected status to stay %q, got %q", Pending, m.Status)
		}
	}
}

func TestRecordFailure_CapTurnsFailed(t *testing.T) {
	t.Parallel()

	m := New("254700000000", TypeSMS, "", "Hello")

	m.RecordFailure(3)
	m.RecordFailure(3)
	if m.Status != Pending {
		t.Fatalf("expected pending below cap, got %q", m.Status)
	}

	m.RecordFailure(3)
	if m.Status != Failed {
		t.Fatalf("expected failed at cap, got %q", m.Status)
	}
	if m.Retries != 3 {
		t.Fatalf("expected retries 3, got %d", m.Retries)
	}
}
