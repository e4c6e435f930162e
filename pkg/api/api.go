// Package api defines the request and response messages of the settleup.v1
// services. Messages travel as JSON; money is a decimal string with two
// fractional digits ("33.34") and times are Unix seconds.
package api

// User is the public view of an account.
type User struct {
	Id          string `json:"id"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	FullName    string `json:"fullName"`
	CreatedAt   int64  `json:"createdAt"`
}

// Member is a user's membership in a group.
type Member struct {
	UserId   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
	JoinedAt int64  `json:"joinedAt"`
}

type Group struct {
	Id          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	Active      bool      `json:"active"`
	Members     []*Member `json:"members"`
	CreatedAt   int64     `json:"createdAt"`
	UpdatedAt   int64     `json:"updatedAt"`
}

type Participation struct {
	Id         string `json:"id"`
	MemberId   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Share      string `json:"share"`
	Paid       bool   `json:"paid"`
	Method     string `json:"method,omitempty"`
	SettledAt  int64  `json:"settledAt,omitempty"`
}

type Expense struct {
	Id             string           `json:"id"`
	GroupId        string           `json:"groupId"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Amount         string           `json:"amount"`
	Category       string           `json:"category"`
	PayerId        string           `json:"payerId"`
	PayerName      string           `json:"payerName"`
	CreatedBy      string           `json:"createdBy"`
	SplitMethod    string           `json:"splitMethod"`
	ExpenseDate    int64            `json:"expenseDate"`
	CreatedAt      int64            `json:"createdAt"`
	UpdatedAt      int64            `json:"updatedAt"`
	Participations []*Participation `json:"participations"`
}

type Settlement struct {
	Id              string `json:"id"`
	GroupId         string `json:"groupId"`
	ExpenseId       string `json:"expenseId"`
	ParticipationId string `json:"participationId"`
	FromUserId      string `json:"fromUserId"`
	ToUserId        string `json:"toUserId"`
	Amount          string `json:"amount"`
	Method          string `json:"method"`
	Note            string `json:"note,omitempty"`
	CreatedBy       string `json:"createdBy"`
	CreatedAt       int64  `json:"createdAt"`
}

// MemberBalance is a member's position in a group. Net is positive when the
// group owes the member.
type MemberBalance struct {
	MemberId     string `json:"memberId"`
	MemberName   string `json:"memberName"`
	Net          string `json:"net"`
	OwedToMember string `json:"owedToMember"`
	OwedByMember string `json:"owedByMember"`
	OpenShares   int32  `json:"openShares"`
	Active       bool   `json:"active"`
}
