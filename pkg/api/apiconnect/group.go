package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "settleup.v1.GroupService"

// Procedure paths of the GroupService.
const (
	GroupServiceCreateGroupProcedure        = "/settleup.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure           = "/settleup.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure         = "/settleup.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure        = "/settleup.v1.GroupService/UpdateGroup"
	GroupServiceArchiveGroupProcedure       = "/settleup.v1.GroupService/ArchiveGroup"
	GroupServiceAddMemberProcedure          = "/settleup.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure       = "/settleup.v1.GroupService/RemoveMember"
	GroupServiceUpdateMemberRoleProcedure   = "/settleup.v1.GroupService/UpdateMemberRole"
	GroupServiceGetGroupBalancesProcedure   = "/settleup.v1.GroupService/GetGroupBalances"
	GroupServiceGetGroupStatisticsProcedure = "/settleup.v1.GroupService/GetGroupStatistics"
)

// GroupServiceHandler is implemented by the server.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	ArchiveGroup(context.Context, *connect.Request[api.ArchiveGroupRequest]) (*connect.Response[api.GroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.GroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.GroupResponse], error)
	UpdateMemberRole(context.Context, *connect.Request[api.UpdateMemberRoleRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupStatistics(context.Context, *connect.Request[api.GetGroupStatisticsRequest]) (*connect.Response[api.GetGroupStatisticsResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for every GroupService procedure.
// It returns the path prefix to mount the handler on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, GroupServiceCreateGroupProcedure, svc.CreateGroup, opts)
	unary(mux, GroupServiceGetGroupProcedure, svc.GetGroup, opts)
	unary(mux, GroupServiceListGroupsProcedure, svc.ListGroups, opts)
	unary(mux, GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts)
	unary(mux, GroupServiceArchiveGroupProcedure, svc.ArchiveGroup, opts)
	unary(mux, GroupServiceAddMemberProcedure, svc.AddMember, opts)
	unary(mux, GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts)
	unary(mux, GroupServiceUpdateMemberRoleProcedure, svc.UpdateMemberRole, opts)
	unary(mux, GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts)
	unary(mux, GroupServiceGetGroupStatisticsProcedure, svc.GetGroupStatistics, opts)
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient calls a remote GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	ArchiveGroup(context.Context, *connect.Request[api.ArchiveGroupRequest]) (*connect.Response[api.GroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.GroupResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.GroupResponse], error)
	UpdateMemberRole(context.Context, *connect.Request[api.UpdateMemberRoleRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetGroupStatistics(context.Context, *connect.Request[api.GetGroupStatisticsRequest]) (*connect.Response[api.GetGroupStatisticsResponse], error)
}

// NewGroupServiceClient returns a JSON client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:        connect.NewClient[api.CreateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:           connect.NewClient[api.GetGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:         connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		updateGroup:        connect.NewClient[api.UpdateGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceUpdateGroupProcedure, opts...),
		archiveGroup:       connect.NewClient[api.ArchiveGroupRequest, api.GroupResponse](httpClient, baseURL+GroupServiceArchiveGroupProcedure, opts...),
		addMember:          connect.NewClient[api.AddMemberRequest, api.GroupResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		removeMember:       connect.NewClient[api.RemoveMemberRequest, api.GroupResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
		updateMemberRole:   connect.NewClient[api.UpdateMemberRoleRequest, api.GroupResponse](httpClient, baseURL+GroupServiceUpdateMemberRoleProcedure, opts...),
		getGroupBalances:   connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
		getGroupStatistics: connect.NewClient[api.GetGroupStatisticsRequest, api.GetGroupStatisticsResponse](httpClient, baseURL+GroupServiceGetGroupStatisticsProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup        *connect.Client[api.CreateGroupRequest, api.GroupResponse]
	getGroup           *connect.Client[api.GetGroupRequest, api.GroupResponse]
	listGroups         *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	updateGroup        *connect.Client[api.UpdateGroupRequest, api.GroupResponse]
	archiveGroup       *connect.Client[api.ArchiveGroupRequest, api.GroupResponse]
	addMember          *connect.Client[api.AddMemberRequest, api.GroupResponse]
	removeMember       *connect.Client[api.RemoveMemberRequest, api.GroupResponse]
	updateMemberRole   *connect.Client[api.UpdateMemberRoleRequest, api.GroupResponse]
	getGroupBalances   *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getGroupStatistics *connect.Client[api.GetGroupStatisticsRequest, api.GetGroupStatisticsResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ArchiveGroup(ctx context.Context, req *connect.Request[api.ArchiveGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.archiveGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) UpdateMemberRole(ctx context.Context, req *connect.Request[api.UpdateMemberRoleRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.updateMemberRole.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupStatistics(ctx context.Context, req *connect.Request[api.GetGroupStatisticsRequest]) (*connect.Response[api.GetGroupStatisticsResponse], error) {
	return c.getGroupStatistics.CallUnary(ctx, req)
}
