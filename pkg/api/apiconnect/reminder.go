package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ReminderServiceName is the fully-qualified name of the ReminderService.
const ReminderServiceName = "settleup.v1.ReminderService"

// Procedure paths of the ReminderService.
const (
	ReminderServiceGetReminderCandidatesProcedure   = "/settleup.v1.ReminderService/GetReminderCandidates"
	ReminderServiceSendReminderProcedure            = "/settleup.v1.ReminderService/SendReminder"
	ReminderServiceSendBulkRemindersProcedure       = "/settleup.v1.ReminderService/SendBulkReminders"
	ReminderServiceScheduleReminderProcedure        = "/settleup.v1.ReminderService/ScheduleReminder"
	ReminderServiceListScheduledRemindersProcedure  = "/settleup.v1.ReminderService/ListScheduledReminders"
	ReminderServiceCancelScheduledReminderProcedure = "/settleup.v1.ReminderService/CancelScheduledReminder"
	ReminderServiceListReminderHistoryProcedure     = "/settleup.v1.ReminderService/ListReminderHistory"
	ReminderServiceSendTestMessageProcedure         = "/settleup.v1.ReminderService/SendTestMessage"
)

// ReminderServiceHandler is implemented by the server.
type ReminderServiceHandler interface {
	GetReminderCandidates(context.Context, *connect.Request[api.GetReminderCandidatesRequest]) (*connect.Response[api.GetReminderCandidatesResponse], error)
	SendReminder(context.Context, *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error)
	SendBulkReminders(context.Context, *connect.Request[api.SendBulkRemindersRequest]) (*connect.Response[api.SendBulkRemindersResponse], error)
	ScheduleReminder(context.Context, *connect.Request[api.ScheduleReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error)
	ListScheduledReminders(context.Context, *connect.Request[api.ListScheduledRemindersRequest]) (*connect.Response[api.ListScheduledRemindersResponse], error)
	CancelScheduledReminder(context.Context, *connect.Request[api.CancelScheduledReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error)
	ListReminderHistory(context.Context, *connect.Request[api.ListReminderHistoryRequest]) (*connect.Response[api.ListReminderHistoryResponse], error)
	SendTestMessage(context.Context, *connect.Request[api.SendTestMessageRequest]) (*connect.Response[api.SendTestMessageResponse], error)
}

// NewReminderServiceHandler builds an HTTP handler for every ReminderService procedure.
// It returns the path prefix to mount the handler on.
func NewReminderServiceHandler(svc ReminderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, ReminderServiceGetReminderCandidatesProcedure, svc.GetReminderCandidates, opts)
	unary(mux, ReminderServiceSendReminderProcedure, svc.SendReminder, opts)
	unary(mux, ReminderServiceSendBulkRemindersProcedure, svc.SendBulkReminders, opts)
	unary(mux, ReminderServiceScheduleReminderProcedure, svc.ScheduleReminder, opts)
	unary(mux, ReminderServiceListScheduledRemindersProcedure, svc.ListScheduledReminders, opts)
	unary(mux, ReminderServiceCancelScheduledReminderProcedure, svc.CancelScheduledReminder, opts)
	unary(mux, ReminderServiceListReminderHistoryProcedure, svc.ListReminderHistory, opts)
	unary(mux, ReminderServiceSendTestMessageProcedure, svc.SendTestMessage, opts)
	return "/" + ReminderServiceName + "/", mux
}

// ReminderServiceClient calls a remote ReminderService.
type ReminderServiceClient interface {
	GetReminderCandidates(context.Context, *connect.Request[api.GetReminderCandidatesRequest]) (*connect.Response[api.GetReminderCandidatesResponse], error)
	SendReminder(context.Context, *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error)
	SendBulkReminders(context.Context, *connect.Request[api.SendBulkRemindersRequest]) (*connect.Response[api.SendBulkRemindersResponse], error)
	ScheduleReminder(context.Context, *connect.Request[api.ScheduleReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error)
	ListScheduledReminders(context.Context, *connect.Request[api.ListScheduledRemindersRequest]) (*connect.Response[api.ListScheduledRemindersResponse], error)
	CancelScheduledReminder(context.Context, *connect.Request[api.CancelScheduledReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error)
	ListReminderHistory(context.Context, *connect.Request[api.ListReminderHistoryRequest]) (*connect.Response[api.ListReminderHistoryResponse], error)
	SendTestMessage(context.Context, *connect.Request[api.SendTestMessageRequest]) (*connect.Response[api.SendTestMessageResponse], error)
}

// NewReminderServiceClient returns a JSON client for the ReminderService at baseURL.
func NewReminderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReminderServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &reminderServiceClient{
		getReminderCandidates:   connect.NewClient[api.GetReminderCandidatesRequest, api.GetReminderCandidatesResponse](httpClient, baseURL+ReminderServiceGetReminderCandidatesProcedure, opts...),
		sendReminder:            connect.NewClient[api.SendReminderRequest, api.SendReminderResponse](httpClient, baseURL+ReminderServiceSendReminderProcedure, opts...),
		sendBulkReminders:       connect.NewClient[api.SendBulkRemindersRequest, api.SendBulkRemindersResponse](httpClient, baseURL+ReminderServiceSendBulkRemindersProcedure, opts...),
		scheduleReminder:        connect.NewClient[api.ScheduleReminderRequest, api.ScheduledReminderResponse](httpClient, baseURL+ReminderServiceScheduleReminderProcedure, opts...),
		listScheduledReminders:  connect.NewClient[api.ListScheduledRemindersRequest, api.ListScheduledRemindersResponse](httpClient, baseURL+ReminderServiceListScheduledRemindersProcedure, opts...),
		cancelScheduledReminder: connect.NewClient[api.CancelScheduledReminderRequest, api.ScheduledReminderResponse](httpClient, baseURL+ReminderServiceCancelScheduledReminderProcedure, opts...),
		listReminderHistory:     connect.NewClient[api.ListReminderHistoryRequest, api.ListReminderHistoryResponse](httpClient, baseURL+ReminderServiceListReminderHistoryProcedure, opts...),
		sendTestMessage:         connect.NewClient[api.SendTestMessageRequest, api.SendTestMessageResponse](httpClient, baseURL+ReminderServiceSendTestMessageProcedure, opts...),
	}
}

type reminderServiceClient struct {
	getReminderCandidates   *connect.Client[api.GetReminderCandidatesRequest, api.GetReminderCandidatesResponse]
	sendReminder            *connect.Client[api.SendReminderRequest, api.SendReminderResponse]
	sendBulkReminders       *connect.Client[api.SendBulkRemindersRequest, api.SendBulkRemindersResponse]
	scheduleReminder        *connect.Client[api.ScheduleReminderRequest, api.ScheduledReminderResponse]
	listScheduledReminders  *connect.Client[api.ListScheduledRemindersRequest, api.ListScheduledRemindersResponse]
	cancelScheduledReminder *connect.Client[api.CancelScheduledReminderRequest, api.ScheduledReminderResponse]
	listReminderHistory     *connect.Client[api.ListReminderHistoryRequest, api.ListReminderHistoryResponse]
	sendTestMessage         *connect.Client[api.SendTestMessageRequest, api.SendTestMessageResponse]
}

func (c *reminderServiceClient) GetReminderCandidates(ctx context.Context, req *connect.Request[api.GetReminderCandidatesRequest]) (*connect.Response[api.GetReminderCandidatesResponse], error) {
	return c.getReminderCandidates.CallUnary(ctx, req)
}

func (c *reminderServiceClient) SendReminder(ctx context.Context, req *connect.Request[api.SendReminderRequest]) (*connect.Response[api.SendReminderResponse], error) {
	return c.sendReminder.CallUnary(ctx, req)
}

func (c *reminderServiceClient) SendBulkReminders(ctx context.Context, req *connect.Request[api.SendBulkRemindersRequest]) (*connect.Response[api.SendBulkRemindersResponse], error) {
	return c.sendBulkReminders.CallUnary(ctx, req)
}

func (c *reminderServiceClient) ScheduleReminder(ctx context.Context, req *connect.Request[api.ScheduleReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error) {
	return c.scheduleReminder.CallUnary(ctx, req)
}

func (c *reminderServiceClient) ListScheduledReminders(ctx context.Context, req *connect.Request[api.ListScheduledRemindersRequest]) (*connect.Response[api.ListScheduledRemindersResponse], error) {
	return c.listScheduledReminders.CallUnary(ctx, req)
}

func (c *reminderServiceClient) CancelScheduledReminder(ctx context.Context, req *connect.Request[api.CancelScheduledReminderRequest]) (*connect.Response[api.ScheduledReminderResponse], error) {
	return c.cancelScheduledReminder.CallUnary(ctx, req)
}

func (c *reminderServiceClient) ListReminderHistory(ctx context.Context, req *connect.Request[api.ListReminderHistoryRequest]) (*connect.Response[api.ListReminderHistoryResponse], error) {
	return c.listReminderHistory.CallUnary(ctx, req)
}

func (c *reminderServiceClient) SendTestMessage(ctx context.Context, req *connect.Request[api.SendTestMessageRequest]) (*connect.Response[api.SendTestMessageResponse], error) {
	return c.sendTestMessage.CallUnary(ctx, req)
}
