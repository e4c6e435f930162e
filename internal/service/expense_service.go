package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/export"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	pb "github.com/mmynk/settleup/pkg/api"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// SettlementNotifier tells a participant their payment was recorded.
type SettlementNotifier interface {
	ConfirmSettlement(ctx context.Context, groupName string, settlement *models.Settlement)
}

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger   *ledger.Ledger
	users    storage.UserStore
	notifier SettlementNotifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService. notifier and m may be nil.
func NewExpenseService(l *ledger.Ledger, users storage.UserStore, notifier SettlementNotifier, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{
		ledger:   l,
		users:    users,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// buildInput converts request details into a ledger input. An equal split
// without participants is shared by every active member.
func buildInput(group *models.Group, d *pb.ExpenseDetails) (ledger.ExpenseInput, error) {
	amount, err := parseMoney("amount", d.Amount)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}
	method, err := models.ParseSplitMethod(d.SplitMethod)
	if err != nil {
		return ledger.ExpenseInput{}, apperr.Validation("%s", err.Error())
	}

	memberIDs := d.ParticipantIds
	if method == models.SplitEqual && len(memberIDs) == 0 {
		memberIDs = group.ActiveMemberIDs()
	}

	exact := make([]calculator.ExactShare, 0, len(d.ExactShares))
	for _, s := range d.ExactShares {
		a, err := parseMoney("exact share", s.Amount)
		if err != nil {
			return ledger.ExpenseInput{}, err
		}
		exact = append(exact, calculator.ExactShare{MemberID: s.MemberId, Amount: a})
	}

	percents := make([]calculator.PercentShare, 0, len(d.Percentages))
	for _, p := range d.Percentages {
		v, err := parseMoney("percentage", p.Percent)
		if err != nil {
			return ledger.ExpenseInput{}, err
		}
		percents = append(percents, calculator.PercentShare{MemberID: p.MemberId, Percent: v})
	}

	rule, err := calculator.NewRule(method, memberIDs, exact, percents)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}

	return ledger.ExpenseInput{
		GroupID:     group.ID,
		Title:       d.Title,
		Description: d.Description,
		Amount:      amount,
		Category:    d.Category,
		PayerID:     d.PayerId,
		ExpenseDate: d.ExpenseDate,
		Rule:        rule,
	}, nil
}

func (s *ExpenseService) respond(ctx context.Context, expense *models.Expense) (*connect.Response[pb.ExpenseResponse], error) {
	users, err := loadUsers(ctx, s.users, expenseUserIDs(*expense))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.ExpenseResponse{Expense: toExpense(expense, users)}), nil
}

// memberGroup loads a group and requires the caller to be an active member.
func (s *ExpenseService) memberGroup(ctx context.Context, groupID string) (*models.Group, string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, "", err
	}
	group, err := s.ledger.Group(ctx, groupID)
	if err != nil {
		return nil, "", err
	}
	if err := requireMember(group, userID); err != nil {
		return nil, "", err
	}
	return group, userID, nil
}

// CreateExpense records a new expense and splits it among participants.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.ExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupId,
		"amount", req.Msg.Amount,
		"split_method", req.Msg.SplitMethod,
	)

	group, userID, err := s.memberGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	in, err := buildInput(group, &req.Msg.ExpenseDetails)
	if err != nil {
		return nil, err
	}
	if in.PayerID == "" {
		in.PayerID = userID
	}

	expense, err := s.ledger.CreateExpense(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, expense)
}

// GetExpense returns an expense with its participations.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.ExpenseResponse], error) {
	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.memberGroup(ctx, expense.GroupID); err != nil {
		return nil, err
	}
	return s.respond(ctx, expense)
}

// ListExpenses returns one page of a group's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error) {
	group, _, err := s.memberGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	page := max(req.Msg.Page, 1)
	perPage := req.Msg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	perPage = min(perPage, maxPerPage)

	expenses, total, err := s.ledger.ListExpenses(ctx, storage.ExpenseFilter{
		GroupID:  group.ID,
		Category: req.Msg.Category,
		Limit:    int(perPage),
		Offset:   int(page-1) * int(perPage),
	})
	if err != nil {
		return nil, err
	}

	users, err := loadUsers(ctx, s.users, expenseUserIDs(expenses...))
	if err != nil {
		return nil, err
	}
	out := make([]*pb.Expense, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpense(&expenses[i], users))
	}

	return connect.NewResponse(&pb.ListExpensesResponse{
		Expenses: out,
		Total:    int32(total),
		Page:     page,
		PerPage:  perPage,
	}), nil
}

// UpdateExpense replaces an unsettled expense's details and re-splits it.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.ExpenseResponse], error) {
	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, err
	}
	group, userID, err := s.memberGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if err := canEditExpense(group, expense, userID); err != nil {
		return nil, err
	}

	in, err := buildInput(group, &req.Msg.ExpenseDetails)
	if err != nil {
		return nil, err
	}
	if in.PayerID == "" {
		in.PayerID = expense.PayerID
	}

	expense, err = s.ledger.UpdateExpense(ctx, expense.ID, in)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, expense)
}

// DeleteExpense removes an unsettled expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[emptypb.Empty], error) {
	expense, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseId)
	if err != nil {
		return nil, err
	}
	group, userID, err := s.memberGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	if err := canEditExpense(group, expense, userID); err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, err
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// SettleParticipation marks one share paid and records the settlement.
func (s *ExpenseService) SettleParticipation(ctx context.Context, req *connect.Request[pb.SettleParticipationRequest]) (*connect.Response[pb.SettleParticipationResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.ExpenseForParticipation(ctx, req.Msg.ParticipationId)
	if err != nil {
		return nil, err
	}
	group, err := s.ledger.Group(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}
	var participantID string
	for _, p := range expense.Participations {
		if p.ID == req.Msg.ParticipationId {
			participantID = p.MemberID
		}
	}
	if err := canSettle(group, expense, participantID, userID); err != nil {
		return nil, err
	}

	result, err := s.ledger.MarkSettled(ctx, req.Msg.ParticipationId, models.SettlementMethod(req.Msg.Method), userID, req.Msg.Note)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveSettlement()
	if s.notifier != nil {
		s.notifier.ConfirmSettlement(ctx, group.Name, result.Settlement)
	}

	users, err := loadUsers(ctx, s.users, expenseUserIDs(*result.Expense))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.SettleParticipationResponse{
		Expense:    toExpense(result.Expense, users),
		Settlement: toSettlement(result.Settlement),
	}), nil
}

// ListSettlements returns a group's settlement records, newest first.
func (s *ExpenseService) ListSettlements(ctx context.Context, req *connect.Request[pb.ListSettlementsRequest]) (*connect.Response[pb.ListSettlementsResponse], error) {
	group, _, err := s.memberGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListSettlements(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	out := make([]*pb.Settlement, 0, len(settlements))
	for _, st := range settlements {
		out = append(out, toSettlement(st))
	}
	return connect.NewResponse(&pb.ListSettlementsResponse{Settlements: out}), nil
}

// ExportExpenses renders every expense of the group as an xlsx workbook.
func (s *ExpenseService) ExportExpenses(ctx context.Context, req *connect.Request[pb.ExportExpensesRequest]) (*connect.Response[pb.ExportExpensesResponse], error) {
	group, userID, err := s.memberGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	expenses, _, err := s.ledger.ListExpenses(ctx, storage.ExpenseFilter{GroupID: group.ID})
	if err != nil {
		return nil, err
	}
	balances, err := s.ledger.MemberBalances(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	ids := append(groupUserIDs(group), expenseUserIDs(expenses...)...)
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	data, err := export.Workbook(group, expenses, balances, users.names())
	if err != nil {
		return nil, err
	}

	slog.Info("Expenses exported", "group_id", group.ID, "user_id", userID, "expenses", len(expenses), "bytes", len(data))
	return connect.NewResponse(&pb.ExportExpensesResponse{
		Filename:    export.Filename(group, s.now()),
		ContentType: export.ContentType,
		Data:        data,
	}), nil
}
