package domain

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatTokens(t *testing.T) {
	cases := map[string]string{
		"5":     "5",
		"0":     "0",
		"-3":    "-3",
		"2.5":   "2.50",
		"1.234": "1.23",
		"10.00": "10",
	}
	for in, want := range cases {
		if got := FormatTokens(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatTokens(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestDBIndex_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.FixedZone("CST", -6*3600))
	events := []LogEvent{
		{ID: "b", Timestamp: base.Add(time.Millisecond)},
		{ID: "z", Timestamp: base},
		{ID: "a", Timestamp: base},
		{ID: "c", Timestamp: base.Add(-time.Hour).UTC()},
	}
	keys := make([]string, len(events))
	for i, e := range events {
		keys[i] = e.DBIndex()
	}
	sort.Strings(keys)

	want := []string{
		"2026-10-14T14:00:00.000Z-c",
		"2026-10-14T15:00:00.000Z-a",
		"2026-10-14T15:00:00.000Z-z",
		"2026-10-14T15:00:00.001Z-b",
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestLogLevel_Valid(t *testing.T) {
	for _, l := range []LogLevel{LevelInfo, LevelWarning, LevelError} {
		if !l.Valid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if LogLevel("debug").Valid() {
		t.Error("debug should not be valid")
	}
}

func TestErrorTypes_MatchSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{&TransportError{Op: "list users", StatusCode: 500}, ErrTransport},
		{&ValidationError{Op: "list users", Problems: []string{"id is required"}}, ErrValidation},
		{&InvalidSelectionError{UserID: "u1"}, ErrInvalidSelection},
		{&StorageError{Op: "open", Kind: ErrStorageUnavailable}, ErrStorageUnavailable},
		{&StorageError{Op: "add", Kind: ErrPersistence}, ErrPersistence},
		{&StorageError{Op: "destroy", Kind: ErrBlocked}, ErrBlocked},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.want) {
			t.Errorf("%v should match %v", tc.err, tc.want)
		}
	}

	if errors.Is(&StorageError{Kind: ErrBlocked}, ErrPersistence) {
		t.Error("storage error must only match its own kind")
	}
}

func TestTransportError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Op: "list actions", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if err.Error() != "list actions: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Op: "list tasks", Problems: []string{"[0] id is required", "[1] name is required"}}
	want := "list tasks: invalid response from server: [0] id is required; [1] name is required"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
