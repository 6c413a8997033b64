package vicebank

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) { return s.token, s.err }

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]json.RawMessage
}

// newTestClient starts a server that answers every request with handler and
// records the last request.
func newTestClient(t *testing.T, handler func(r recorded) (int, string)) (*Client, *recorded) {
	t.Helper()
	last := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("authorization"),
		}
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &rec.body); err != nil {
					t.Errorf("request body is not a JSON object: %v", err)
				}
			}
		}
		*last = rec
		status, body := handler(rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		BaseURL: srv.URL + "/",
		Tokens:  staticTokens{token: "tok-123"},
		Logger:  zerolog.Nop(),
	})
	return c, last
}

func respond(status int, body string) func(recorded) (int, string) {
	return func(recorded) (int, string) { return status, body }
}

const actionJSON = `{"id":"a1","vbUserId":"u1","name":"Run","conversionUnit":"km","inputQuantity":1,"tokensEarnedPerInput":2.5,"minDeposit":1,"maxDeposit":10}`

const taskJSON = `{"id":"t1","vbUserId":"u1","name":"Dishes","frequency":"daily","tokensEarnedPerInput":1}`

const rewardJSON = `{"id":"r1","vbUserId":"u1","name":"Movie","price":20}`

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

func TestListActions_SendsOwnerAndAuthorization(t *testing.T) {
	c, last := newTestClient(t, respond(http.StatusOK, `{"actions":[`+actionJSON+`]}`))

	got, err := c.Actions().List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.method != http.MethodGet || last.path != "/vice_bank/actions" {
		t.Errorf("request = %s %s, want GET /vice_bank/actions", last.method, last.path)
	}
	if last.query != "vbUserId=u1" {
		t.Errorf("query = %q, want vbUserId=u1", last.query)
	}
	if last.auth != "tok-123" {
		t.Errorf("authorization = %q, want raw token", last.auth)
	}

	want := []domain.Action{{
		ID:                   "a1",
		VBUserID:             "u1",
		Name:                 "Run",
		ConversionUnit:       "km",
		InputQuantity:        decimal.NewFromInt(1),
		TokensEarnedPerInput: decimal.RequireFromString("2.5"),
		MinDeposit:           decimal.NewFromInt(1),
		MaxDeposit:           decimal.NewFromInt(10),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestListRewards_AcceptsBareArray(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, `[`+rewardJSON+`]`))

	got, err := c.Rewards().List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Movie" || !got[0].Price.Equal(decimal.NewFromInt(20)) {
		t.Errorf("unexpected rewards: %+v", got)
	}
}

func TestAddTask_OmitsServerAssignedFields(t *testing.T) {
	c, last := newTestClient(t, respond(http.StatusOK, `{"task":`+taskJSON+`}`))

	_, err := c.Tasks().Add(context.Background(), domain.Task{
		ID:                   "ignored",
		VBUserID:             "u1",
		Name:                 "Dishes",
		Frequency:            domain.FrequencyDaily,
		TokensEarnedPerInput: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last.path != "/vice_bank/addTask" {
		t.Errorf("path = %q, want /vice_bank/addTask", last.path)
	}
	raw, ok := last.body["taskToAdd"]
	if !ok {
		t.Fatalf("request body missing taskToAdd: %v", last.body)
	}
	if strings.Contains(string(raw), `"id"`) {
		t.Errorf("add payload must not carry an id: %s", raw)
	}
}

func TestDeleteAction_SendsIDOnly(t *testing.T) {
	c, last := newTestClient(t, respond(http.StatusOK, `{"action":`+actionJSON+`}`))

	got, err := c.Actions().Delete(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VBUserID != "u1" {
		t.Errorf("deleted owner = %q, want u1", got.VBUserID)
	}
	if string(last.body["actionId"]) != `"a1"` || len(last.body) != 1 {
		t.Errorf("delete body = %v, want {actionId: a1}", last.body)
	}
}

func TestAddUser_UsesUserToAdd(t *testing.T) {
	c, last := newTestClient(t, respond(http.StatusOK,
		`{"user":{"id":"u9","userId":"owner","name":"Kim","currentTokens":0}}`))

	got, err := c.Users().Add(context.Background(), domain.NewUser{Name: "Kim"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u9" || got.UserID != "owner" {
		t.Errorf("unexpected user: %+v", got)
	}
	if _, ok := last.body["userToAdd"]; !ok {
		t.Errorf("request body missing userToAdd: %v", last.body)
	}
}

func TestCurrentTokens(t *testing.T) {
	c, last := newTestClient(t, respond(http.StatusOK, `{"currentTokens":42.5}`))

	got, err := c.Tokens().CurrentTokens(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("tokens = %s, want 42.5", got)
	}
	if last.path != "/vice_bank/currentTokens" || last.query != "vbUserId=u1" {
		t.Errorf("request = %s?%s", last.path, last.query)
	}
}

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

// echoItem answers an update by returning the submitted entity.
func echoItem(key string) func(recorded) (int, string) {
	return func(r recorded) (int, string) {
		return http.StatusOK, `{"` + key + `":` + string(r.body[key]) + `}`
	}
}

func TestUpdate_RoundTripsEntities(t *testing.T) {
	date := time.Date(2026, 10, 14, 8, 30, 15, 123_000_000, time.UTC)
	action := domain.Action{
		ID: "a1", VBUserID: "u1", Name: "Run", ConversionUnit: "km",
		InputQuantity:        decimal.RequireFromString("0.5"),
		TokensEarnedPerInput: decimal.NewFromInt(3),
		MinDeposit:           decimal.NewFromInt(1),
		MaxDeposit:           decimal.NewFromInt(5),
	}
	task := domain.Task{ID: "t1", VBUserID: "u1", Name: "Dishes", Frequency: domain.FrequencyWeekly, TokensEarnedPerInput: decimal.NewFromInt(2)}
	reward := domain.Reward{ID: "r1", VBUserID: "u1", Name: "Movie", Price: decimal.RequireFromString("12.75")}

	t.Run("action deposit", func(t *testing.T) {
		c, _ := newTestClient(t, echoItem("actionDeposit"))
		in := domain.ActionDeposit{ID: "d1", VBUserID: "u1", Date: date, DepositQuantity: decimal.NewFromInt(4), Action: action}
		got, err := c.ActionDeposits().Update(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("task deposit", func(t *testing.T) {
		c, _ := newTestClient(t, echoItem("taskDeposit"))
		in := domain.TaskDeposit{ID: "d2", VBUserID: "u1", Date: date, Task: task}
		got, err := c.TaskDeposits().Update(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("purchase", func(t *testing.T) {
		c, _ := newTestClient(t, echoItem("purchase"))
		in := domain.Purchase{ID: "p1", VBUserID: "u1", Date: date, PurchasedQuantity: 2, Reward: reward}
		got, err := c.Purchases().Update(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("user", func(t *testing.T) {
		c, last := newTestClient(t, func(r recorded) (int, string) {
			return http.StatusOK, `{"user":` + string(r.body["vbUser"]) + `}`
		})
		in := domain.User{ID: "u1", UserID: "owner", Name: "Kim", CurrentTokens: decimal.NewFromInt(7)}
		got, err := c.Users().Update(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if last.path != "/vice_bank/updateUser" {
			t.Errorf("path = %q", last.path)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

// ---------------------------------------------------------------------------
// Failures
// ---------------------------------------------------------------------------

func TestListActions_RejectsInvalidShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing field", `{"actions":[{"id":"a1","vbUserId":"u1","name":"Run","conversionUnit":"km","inputQuantity":1,"tokensEarnedPerInput":2,"minDeposit":1}]}`},
		{"mistyped field", `{"actions":[{"id":"a1","vbUserId":"u1","name":"Run","conversionUnit":"km","inputQuantity":"1","tokensEarnedPerInput":2,"minDeposit":1,"maxDeposit":2}]}`},
		{"unknown field", `{"actions":[` + strings.Replace(actionJSON, `"id"`, `"extra":true,"id"`, 1) + `]}`},
		{"missing envelope", `[` + actionJSON + `]`},
		{"wrong envelope", `{"tasks":[]}`},
		{"extra envelope key", `{"actions":[],"count":0}`},
		{"null list", `{"actions":null}`},
		{"null element", `{"actions":[null]}`},
		{"not json", `<html>`},
		{"trailing data", `{"actions":[]} {}`},
		{"one bad element among good", `{"actions":[` + actionJSON + `,{"id":"a2"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, respond(http.StatusOK, tc.body))
			got, err := c.Actions().List(context.Background(), "u1")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Op != "list action" {
				t.Errorf("expected ValidationError for list action, got %#v", err)
			}
			if got != nil {
				t.Errorf("expected no items, got %v", got)
			}
		})
	}
}

func TestSingleEntity_RejectsInvalidShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"purchase":{"id":"p1","vbUserId":"u1","date":"yesterday","purchasedQuantity":1,"reward":` + rewardJSON + `}}`},
		{"nested missing field", `{"purchase":{"id":"p1","vbUserId":"u1","date":"2026-10-01T00:00:00Z","purchasedQuantity":1,"reward":{"id":"r1"}}}`},
		{"fractional quantity", `{"purchase":{"id":"p1","vbUserId":"u1","date":"2026-10-01T00:00:00Z","purchasedQuantity":1.5,"reward":` + rewardJSON + `}}`},
		{"null entity", `{"purchase":null}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, respond(http.StatusOK, tc.body))
			_, err := c.Purchases().Delete(context.Background(), "p1")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestListTasks_RejectsUnknownFrequency(t *testing.T) {
	body := `{"tasks":[` + strings.Replace(taskJSON, "daily", "hourly", 1) + `]}`
	c, _ := newTestClient(t, respond(http.StatusOK, body))

	_, err := c.Tasks().List(context.Background(), "u1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNonSuccessStatus_IsTransportError(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusInternalServerError, `{"error":"boom"}`))

	_, err := c.Users().List(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var te *domain.TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500 in TransportError, got %#v", err)
	}
	if !strings.Contains(te.Body, "boom") {
		t.Errorf("expected body snippet, got %q", te.Body)
	}
}

func TestUnreachableServer_IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Options{BaseURL: base, Tokens: staticTokens{token: "t"}, Logger: zerolog.Nop()})
	_, err := c.Rewards().List(context.Background(), "u1")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestTokenFailure_SkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Tokens: staticTokens{err: domain.ErrNotAuthenticated}, Logger: zerolog.Nop()})
	_, err := c.Users().List(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if called {
		t.Error("request must not be sent without a token")
	}
}

func TestDelete_RequiresID(t *testing.T) {
	c, _ := newTestClient(t, respond(http.StatusOK, `{}`))
	if _, err := c.Tasks().Delete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestOversizedResponse_IsTransportError(t *testing.T) {
	body := `{"users":[` + strings.Repeat(" ", maxResponseBytes) + `]}`
	c, _ := newTestClient(t, respond(http.StatusOK, body))

	_, err := c.Users().List(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Error("an oversized body must not be reported as malformed")
	}
	if !errors.Is(err, errResponseTooLarge) {
		t.Errorf("expected response too large, got %v", err)
	}
}

func TestLargeResponseWithinLimit_Decodes(t *testing.T) {
	padding := strings.Repeat(" ", maxResponseBytes-64)
	c, _ := newTestClient(t, respond(http.StatusOK, `{"users":[]`+padding+`}`))

	users, err := c.Users().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}
