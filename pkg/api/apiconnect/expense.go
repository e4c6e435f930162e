package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/settleup/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "settleup.v1.ExpenseService"

// Procedure paths of the ExpenseService.
const (
	ExpenseServiceCreateExpenseProcedure       = "/settleup.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure          = "/settleup.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure        = "/settleup.v1.ExpenseService/ListExpenses"
	ExpenseServiceUpdateExpenseProcedure       = "/settleup.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure       = "/settleup.v1.ExpenseService/DeleteExpense"
	ExpenseServiceSettleParticipationProcedure = "/settleup.v1.ExpenseService/SettleParticipation"
	ExpenseServiceListSettlementsProcedure     = "/settleup.v1.ExpenseService/ListSettlements"
	ExpenseServiceExportExpensesProcedure      = "/settleup.v1.ExpenseService/ExportExpenses"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[emptypb.Empty], error)
	SettleParticipation(context.Context, *connect.Request[api.SettleParticipationRequest]) (*connect.Response[api.SettleParticipationResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ExportExpenses(context.Context, *connect.Request[api.ExportExpensesRequest]) (*connect.Response[api.ExportExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for every ExpenseService procedure.
// It returns the path prefix to mount the handler on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	unary(mux, ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts)
	unary(mux, ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts)
	unary(mux, ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts)
	unary(mux, ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts)
	unary(mux, ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts)
	unary(mux, ExpenseServiceSettleParticipationProcedure, svc.SettleParticipation, opts)
	unary(mux, ExpenseServiceListSettlementsProcedure, svc.ListSettlements, opts)
	unary(mux, ExpenseServiceExportExpensesProcedure, svc.ExportExpenses, opts)
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient calls a remote ExpenseService.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[emptypb.Empty], error)
	SettleParticipation(context.Context, *connect.Request[api.SettleParticipationRequest]) (*connect.Response[api.SettleParticipationResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	ExportExpenses(context.Context, *connect.Request[api.ExportExpensesRequest]) (*connect.Response[api.ExportExpensesResponse], error)
}

// NewExpenseServiceClient returns a JSON client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createExpense:       connect.NewClient[api.CreateExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:          connect.NewClient[api.GetExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listExpenses:        connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		updateExpense:       connect.NewClient[api.UpdateExpenseRequest, api.ExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense:       connect.NewClient[api.DeleteExpenseRequest, emptypb.Empty](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		settleParticipation: connect.NewClient[api.SettleParticipationRequest, api.SettleParticipationResponse](httpClient, baseURL+ExpenseServiceSettleParticipationProcedure, opts...),
		listSettlements:     connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+ExpenseServiceListSettlementsProcedure, opts...),
		exportExpenses:      connect.NewClient[api.ExportExpensesRequest, api.ExportExpensesResponse](httpClient, baseURL+ExpenseServiceExportExpensesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createExpense       *connect.Client[api.CreateExpenseRequest, api.ExpenseResponse]
	getExpense          *connect.Client[api.GetExpenseRequest, api.ExpenseResponse]
	listExpenses        *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	updateExpense       *connect.Client[api.UpdateExpenseRequest, api.ExpenseResponse]
	deleteExpense       *connect.Client[api.DeleteExpenseRequest, emptypb.Empty]
	settleParticipation *connect.Client[api.SettleParticipationRequest, api.SettleParticipationResponse]
	listSettlements     *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	exportExpenses      *connect.Client[api.ExportExpensesRequest, api.ExportExpensesResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SettleParticipation(ctx context.Context, req *connect.Request[api.SettleParticipationRequest]) (*connect.Response[api.SettleParticipationResponse], error) {
	return c.settleParticipation.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ExportExpenses(ctx context.Context, req *connect.Request[api.ExportExpensesRequest]) (*connect.Response[api.ExportExpensesResponse], error) {
	return c.exportExpenses.CallUnary(ctx, req)
}
