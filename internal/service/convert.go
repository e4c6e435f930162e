package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/reminder"
	"github.com/mmynk/settleup/internal/storage"
	pb "github.com/mmynk/settleup/pkg/api"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// parseMoney parses a decimal string from a request field.
func parseMoney(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, apperr.Validation("%s must be a decimal number", field)
	}
	if err := calculator.CheckAmount(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// userDirectory resolves user IDs to accounts for display names.
type userDirectory map[string]*models.User

func loadUsers(ctx context.Context, users storage.UserStore, ids []string) (userDirectory, error) {
	dir, err := users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return dir, nil
}

func (d userDirectory) name(id string) string {
	if u, ok := d[id]; ok {
		return u.FullName
	}
	return ""
}

func (d userDirectory) names() map[string]string {
	out := make(map[string]string, len(d))
	for id, u := range d {
		out[id] = u.FullName
	}
	return out
}

// groupUserIDs returns every user referenced by the group's memberships.
func groupUserIDs(group *models.Group) []string {
	ids := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// expenseUserIDs returns every payer and participant of expenses.
func expenseUserIDs(expenses ...models.Expense) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range expenses {
		add(e.PayerID)
		for _, p := range e.Participations {
			add(p.MemberID)
		}
	}
	return ids
}

func toUser(u *models.User) *pb.User {
	return &pb.User{
		Id:          u.ID,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FullName:    u.FullName,
		CreatedAt:   u.CreatedAt,
	}
}

func toGroup(g *models.Group, users userDirectory) *pb.Group {
	members := make([]*pb.Member, 0, len(g.Members))
	for _, m := range g.Members {
		member := &pb.Member{
			UserId:   m.UserID,
			Role:     string(m.Role),
			Active:   m.Active,
			JoinedAt: m.JoinedAt,
		}
		if u, ok := users[m.UserID]; ok {
			member.FullName = u.FullName
			member.Email = u.Email
		}
		members = append(members, member)
	}
	return &pb.Group{
		Id:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Active:      g.Active,
		Members:     members,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func toExpense(e *models.Expense, users userDirectory) *pb.Expense {
	participations := make([]*pb.Participation, 0, len(e.Participations))
	for _, p := range e.Participations {
		participations = append(participations, &pb.Participation{
			Id:         p.ID,
			MemberId:   p.MemberID,
			MemberName: users.name(p.MemberID),
			Share:      money(p.Share),
			Paid:       p.Paid,
			Method:     string(p.Method),
			SettledAt:  p.SettledAt,
		})
	}
	return &pb.Expense{
		Id:             e.ID,
		GroupId:        e.GroupID,
		Title:          e.Title,
		Description:    e.Description,
		Amount:         money(e.Amount),
		Category:       e.Category,
		PayerId:        e.PayerID,
		PayerName:      users.name(e.PayerID),
		CreatedBy:      e.CreatedBy,
		SplitMethod:    string(e.SplitMethod),
		ExpenseDate:    e.ExpenseDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		Participations: participations,
	}
}

func toSettlement(s *models.Settlement) *pb.Settlement {
	return &pb.Settlement{
		Id:              s.ID,
		GroupId:         s.GroupID,
		ExpenseId:       s.ExpenseID,
		ParticipationId: s.ParticipationID,
		FromUserId:      s.FromUserID,
		ToUserId:        s.ToUserID,
		Amount:          money(s.Amount),
		Method:          string(s.Method),
		Note:            s.Note,
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt,
	}
}

func toBalance(b calculator.MemberBalance, group *models.Group, users userDirectory) *pb.MemberBalance {
	return &pb.MemberBalance{
		MemberId:     b.MemberID,
		MemberName:   users.name(b.MemberID),
		Net:          money(b.Net),
		OwedToMember: money(b.OwedToMember),
		OwedByMember: money(b.OwedByMember),
		OpenShares:   int32(b.OpenShares),
		Active:       group.IsMember(b.MemberID),
	}
}

func toReminderResult(r reminder.Result) *pb.ReminderResult {
	return &pb.ReminderResult{
		MemberId:   r.MemberID,
		MemberName: r.MemberName,
		Amount:     money(r.Amount),
		Success:    r.Success,
		MessageId:  r.MessageID,
		Error:      r.Error,
	}
}

func toScheduledReminder(r *models.ScheduledReminder) *pb.ScheduledReminder {
	return &pb.ScheduledReminder{
		Id:            r.ID,
		GroupId:       r.GroupID,
		MemberId:      r.MemberID,
		CreatedBy:     r.CreatedBy,
		MessageType:   string(r.MessageType),
		CustomMessage: r.CustomMessage,
		Cron:          r.Schedule,
		NextRunAt:     r.NextRunAt,
		Status:        string(r.Status),
		LastError:     r.LastError,
		CreatedAt:     r.CreatedAt,
	}
}

func toReminderLog(l *models.ReminderLog) *pb.ReminderLogEntry {
	return &pb.ReminderLogEntry{
		Id:          l.ID,
		MemberId:    l.MemberID,
		SenderId:    l.SenderID,
		Amount:      money(l.Amount),
		MessageType: string(l.MessageType),
		Success:     l.Success,
		MessageId:   l.MessageID,
		Error:       l.Error,
		SentAt:      l.SentAt,
	}
}
