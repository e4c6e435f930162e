package api

type ExactShare struct {
	MemberId string `json:"memberId"`
	Amount   string `json:"amount"`
}

type PercentShare struct {
	MemberId string `json:"memberId"`
	Percent  string `json:"percent"`
}

// ExpenseDetails are the editable fields of an expense. SplitMethod selects
// which of ParticipantIds, ExactShares or Percentages is read.
type ExpenseDetails struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Amount         string          `json:"amount"`
	Category       string          `json:"category"`
	PayerId        string          `json:"payerId"`
	ExpenseDate    int64           `json:"expenseDate,omitempty"`
	SplitMethod    string          `json:"splitMethod"`
	ParticipantIds []string        `json:"participantIds,omitempty"`
	ExactShares    []*ExactShare   `json:"exactShares,omitempty"`
	Percentages    []*PercentShare `json:"percentages,omitempty"`
}

type CreateExpenseRequest struct {
	GroupId string `json:"groupId"`
	ExpenseDetails
}

type UpdateExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
	ExpenseDetails
}

type GetExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type DeleteExpenseRequest struct {
	ExpenseId string `json:"expenseId"`
}

type ExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// ListExpensesRequest pages through a group's expenses, newest expense date
// first. Page starts at 1; PerPage defaults to 20 and is capped at 100.
type ListExpensesRequest struct {
	GroupId  string `json:"groupId"`
	Category string `json:"category,omitempty"`
	Page     int32  `json:"page,omitempty"`
	PerPage  int32  `json:"perPage,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
	Total    int32      `json:"total"`
	Page     int32      `json:"page"`
	PerPage  int32      `json:"perPage"`
}

type SettleParticipationRequest struct {
	ParticipationId string `json:"participationId"`
	Method          string `json:"method,omitempty"`
	Note            string `json:"note,omitempty"`
}

type SettleParticipationResponse struct {
	Expense    *Expense    `json:"expense"`
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupId string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type ExportExpensesRequest struct {
	GroupId string `json:"groupId"`
}

// ExportExpensesResponse carries an xlsx workbook; Data is base64 on the wire.
type ExportExpensesResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
