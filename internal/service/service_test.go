package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/reminder"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	pb "github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

const testPassword = "Secret123"

type sentMessage struct {
	phone, body string
}

// fakeSender records messages and fails for the configured phone numbers.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (s *fakeSender) Send(ctx context.Context, phone, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[phone] {
		return "", apperr.Dependency(errors.New("carrier rejected"), "failed to send SMS")
	}
	s.sent = append(s.sent, sentMessage{phone: phone, body: body})
	return fmt.Sprintf("SM%03d", len(s.sent)), nil
}

func (s *fakeSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type testServer struct {
	auth      apiconnect.AuthServiceClient
	groups    apiconnect.GroupServiceClient
	expenses  apiconnect.ExpenseServiceClient
	reminders apiconnect.ReminderServiceClient
	store     *sqlite.SQLiteStore
	sender    *fakeSender
	metrics   *metrics.Metrics
}

// session is a registered user and their access token.
type session struct {
	userID string
	email  string
	phone  string
	token  string
}

// setupTestServer starts every service behind the production interceptor chain.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	m := metrics.New()
	sender := &fakeSender{failFor: map[string]bool{}}
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	l := ledger.New(store)
	dispatcher := reminder.NewDispatcher(l, store, sender, reminder.WithConcurrency(2), reminder.WithMetrics(m))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	opts := middleware.Interceptors(m, middleware.RequireAuth(jwtManager, PublicProcedures...))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l, store), opts))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l, store, dispatcher, m), opts))
	mux.Handle(apiconnect.NewReminderServiceHandler(
		NewReminderService(l, store, dispatcher, decimal.RequireFromString("0.01")), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		auth:      apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:    apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:  apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		reminders: apiconnect.NewReminderServiceClient(http.DefaultClient, server.URL),
		store:     store,
		sender:    sender,
		metrics:   m,
	}
}

// withToken wraps msg in a request carrying the session's bearer token.
func withToken[T any](s *session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

var phoneSeq int

// register creates a user with a unique phone number.
func (ts *testServer) register(t *testing.T, name, email string) *session {
	t.Helper()
	phoneSeq++
	phone := fmt.Sprintf("+1555010%04d", phoneSeq)

	resp, err := ts.auth.Register(context.Background(), connect.NewRequest(&pb.RegisterRequest{
		Email:       email,
		PhoneNumber: phone,
		FullName:    name,
		Password:    testPassword,
	}))
	require.NoError(t, err)
	return &session{
		userID: resp.Msg.User.Id,
		email:  resp.Msg.User.Email,
		phone:  phone,
		token:  resp.Msg.AccessToken,
	}
}

// createGroup creates a group owned by admin with the other sessions as members.
func (ts *testServer) createGroup(t *testing.T, admin *session, name string, members ...*session) *pb.Group {
	t.Helper()
	emails := make([]string, 0, len(members))
	for _, m := range members {
		emails = append(emails, m.email)
	}
	resp, err := ts.groups.CreateGroup(context.Background(), withToken(admin, &pb.CreateGroupRequest{
		Name:         name,
		MemberEmails: emails,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

// addEqualExpense records amount paid by payer and split equally among participants.
func (ts *testServer) addEqualExpense(t *testing.T, caller *session, groupID string, payer *session, amount string, participants ...*session) *pb.Expense {
	t.Helper()
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.userID)
	}
	resp, err := ts.expenses.CreateExpense(context.Background(), withToken(caller, &pb.CreateExpenseRequest{
		GroupId: groupID,
		ExpenseDetails: pb.ExpenseDetails{
			Title:          "Expense",
			Amount:         amount,
			PayerId:        payer.userID,
			SplitMethod:    "equal",
			ParticipantIds: ids,
		},
	}))
	require.NoError(t, err)
	return resp.Msg.Expense
}

func participationFor(t *testing.T, expense *pb.Expense, memberID string) *pb.Participation {
	t.Helper()
	for _, p := range expense.Participations {
		if p.MemberId == memberID {
			return p
		}
	}
	t.Fatalf("no participation for member %s", memberID)
	return nil
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "unexpected error: %v", err)
}
