package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	pb "github.com/mmynk/settleup/pkg/api"
)

const statisticsWindow = 30 * 24 * time.Hour

// GroupService implements the Connect GroupService
type GroupService struct {
	ledger *ledger.Ledger
	users  storage.UserStore
	now    func() time.Time
}

// NewGroupService creates a new GroupService.
func NewGroupService(l *ledger.Ledger, users storage.UserStore) *GroupService {
	return &GroupService{ledger: l, users: users, now: time.Now}
}

// loadGroup returns the group and the caller, requiring active membership.
func (s *GroupService) loadGroup(ctx context.Context, groupID string) (*models.Group, string, error) {
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

func (s *GroupService) respond(ctx context.Context, group *models.Group) (*connect.Response[pb.GroupResponse], error) {
	users, err := loadUsers(ctx, s.users, groupUserIDs(group))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.GroupResponse{Group: toGroup(group, users)}), nil
}

// userByEmail resolves a registered user, reporting unknown emails as NotFound.
func (s *GroupService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("no user registered with email %s", email)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// CreateGroup creates a new group with the caller as admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[pb.CreateGroupRequest]) (*connect.Response[pb.GroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberEmails),
	)

	memberIDs := make([]string, 0, len(req.Msg.MemberEmails))
	for _, email := range req.Msg.MemberEmails {
		user, err := s.userByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		memberIDs = append(memberIDs, user.ID)
	}

	group, err := s.ledger.CreateGroup(ctx, userID, req.Msg.Name, req.Msg.Description, memberIDs)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[pb.GetGroupRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, _, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// ListGroups returns the caller's active groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[pb.ListGroupsRequest]) (*connect.Response[pb.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, groupUserIDs(g)...)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*pb.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroup(g, users))
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&pb.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group or changes its description.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[pb.UpdateGroupRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, userID, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, userID); err != nil {
		return nil, err
	}

	group, err = s.ledger.UpdateGroup(ctx, group.ID, req.Msg.Name, req.Msg.Description)
	if err != nil {
		return nil, err
	}
	slog.Info("Group updated", "group_id", group.ID, "user_id", userID)
	return s.respond(ctx, group)
}

// ArchiveGroup deactivates a group.
func (s *GroupService) ArchiveGroup(ctx context.Context, req *connect.Request[pb.ArchiveGroupRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, userID, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, userID); err != nil {
		return nil, err
	}

	group, err = s.ledger.ArchiveGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// AddMember adds a registered user to the group by email.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, userID, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, userID); err != nil {
		return nil, err
	}

	user, err := s.userByEmail(ctx, req.Msg.Email)
	if err != nil {
		return nil, err
	}
	group, err = s.ledger.AddMember(ctx, group.ID, user.ID, models.Role(req.Msg.Role))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// RemoveMember removes a member. Admins can remove anyone; members can leave.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[pb.RemoveMemberRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, userID, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserId != userID {
		if err := requireAdmin(group, userID); err != nil {
			return nil, err
		}
	}

	group, err = s.ledger.RemoveMember(ctx, group.ID, req.Msg.UserId)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// UpdateMemberRole promotes or demotes a member.
func (s *GroupService) UpdateMemberRole(ctx context.Context, req *connect.Request[pb.UpdateMemberRoleRequest]) (*connect.Response[pb.GroupResponse], error) {
	group, userID, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(group, userID); err != nil {
		return nil, err
	}

	group, err = s.ledger.SetMemberRole(ctx, group.ID, req.Msg.UserId, models.Role(req.Msg.Role))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, group)
}

// GetGroupBalances returns every member's net balance, recomputed from the
// stored participations.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	group, _, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	balances, err := s.ledger.MemberBalances(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	ids := groupUserIDs(group)
	for _, b := range balances {
		ids = append(ids, b.MemberID)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*pb.MemberBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, toBalance(b, group, users))
	}
	return connect.NewResponse(&pb.GetGroupBalancesResponse{Balances: out}), nil
}

// GetGroupStatistics summarises spending over a date range, by default the
// last 30 days.
func (s *GroupService) GetGroupStatistics(ctx context.Context, req *connect.Request[pb.GetGroupStatisticsRequest]) (*connect.Response[pb.GetGroupStatisticsResponse], error) {
	group, _, err := s.loadGroup(ctx, req.Msg.GroupId)
	if err != nil {
		return nil, err
	}

	to := req.Msg.To
	if to == 0 {
		to = s.now().Unix()
	}
	from := req.Msg.From
	if from == 0 {
		from = time.Unix(to, 0).Add(-statisticsWindow).Unix()
	}

	stats, err := s.ledger.Statistics(ctx, group.ID, from, to)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(stats.TopPayers))
	for _, p := range stats.TopPayers {
		ids = append(ids, p.MemberID)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	resp := &pb.GetGroupStatisticsResponse{
		From:     from,
		To:       to,
		Count:    int32(stats.Count),
		Total:    money(stats.Total),
		Average:  money(stats.Average),
		Largest:  money(stats.Largest),
		Smallest: money(stats.Smallest),
	}
	for _, c := range stats.Categories {
		resp.Categories = append(resp.Categories, &pb.CategoryTotal{
			Category: c.Category,
			Count:    int32(c.Count),
			Amount:   money(c.Amount),
		})
	}
	for _, p := range stats.TopPayers {
		resp.TopPayers = append(resp.TopPayers, &pb.PayerTotal{
			MemberId:   p.MemberID,
			MemberName: users.name(p.MemberID),
			Count:      int32(p.Count),
			Amount:     money(p.Amount),
		})
	}
	return connect.NewResponse(resp), nil
}
