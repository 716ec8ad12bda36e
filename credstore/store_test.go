package credstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func sampleRecord() Record {
	return Record{
		ID:         "u-42",
		Email:      "instructor@example.com",
		Name:       "Ivy Instructor",
		Role:       "instructor",
		Department: "Mathematics",
		Campus:     "West",
		Username:   "ivy",
		Token:      "token-xyz",
		LoginTime:  time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Students:   []string{"s-1", "s-2"},
	}
}

func assertRecordEqual(t *testing.T, got *Record, want Record) {
	t.Helper()
	if got == nil {
		t.Fatal("expected a record, got nil")
	}
	if got.ID != want.ID || got.Email != want.Email || got.Name != want.Name ||
		got.Role != want.Role || got.Department != want.Department ||
		got.Campus != want.Campus || got.Username != want.Username ||
		got.Token != want.Token {
		t.Fatalf("record mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.LoginTime.Equal(want.LoginTime) {
		t.Fatalf("LoginTime mismatch: got %v, want %v", got.LoginTime, want.LoginTime)
	}
	if len(got.Students) != len(want.Students) {
		t.Fatalf("Students mismatch: got %v, want %v", got.Students, want.Students)
	}
	for i := range want.Students {
		if got.Students[i] != want.Students[i] {
			t.Fatalf("Students mismatch: got %v, want %v", got.Students, want.Students)
		}
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	rec, err := store.Load(ctx)
	if err != nil || rec != nil {
		t.Fatalf("empty store: rec=%v err=%v", rec, err)
	}

	want := sampleRecord()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertRecordEqual(t, rec, want)

	token, err := store.Token(ctx)
	if err != nil || token != want.Token {
		t.Fatalf("Token = %q, err=%v", token, err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	rec, err = store.Load(ctx)
	if err != nil || rec != nil {
		t.Fatalf("cleared store: rec=%v err=%v", rec, err)
	}
	if token, _ := store.Token(ctx); token != "" {
		t.Fatalf("cleared store token = %q", token)
	}
}

func TestMemoryCorruptRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  []byte
	}{
		{"not json", []byte("{broken")},
		{"missing token", []byte(`{"id":"u-1","email":"a@b.c","loginTime":"2025-03-10T09:00:00Z"}`)},
		{"missing login time", []byte(`{"id":"u-1","email":"a@b.c","token":"tok"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemory()
			store.seed(KeyUser, tt.raw)

			rec, err := store.Load(ctx)
			if !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got rec=%v err=%v", rec, err)
			}

			// The corrupt payload is gone; a second Load is a clean miss.
			rec, err = store.Load(ctx)
			if err != nil || rec != nil {
				t.Fatalf("second Load: rec=%v err=%v", rec, err)
			}
		})
	}
}

func TestMemoryRememberMe(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	on, email, err := store.RememberMe(ctx)
	if err != nil || on || email != "" {
		t.Fatalf("fresh store: on=%v email=%q err=%v", on, email, err)
	}

	if err := store.SetRememberMe(ctx, "ivy@example.com"); err != nil {
		t.Fatalf("SetRememberMe failed: %v", err)
	}
	if err := store.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	on, email, err = store.RememberMe(ctx)
	if err != nil {
		t.Fatalf("RememberMe failed: %v", err)
	}
	if !on || email != "ivy@example.com" {
		t.Fatalf("remember-me must survive Clear: on=%v email=%q", on, email)
	}

	if err := store.ClearRememberMe(ctx); err != nil {
		t.Fatalf("ClearRememberMe failed: %v", err)
	}
	on, email, _ = store.RememberMe(ctx)
	if on || email != "" {
		t.Fatalf("expected cleared remember-me, got on=%v email=%q", on, email)
	}
}
