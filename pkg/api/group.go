package api

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// MemberEmails are added as members alongside the creator.
	MemberEmails []string `json:"memberEmails"`
}

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type UpdateGroupRequest struct {
	GroupId     string `json:"groupId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ArchiveGroupRequest struct {
	GroupId string `json:"groupId"`
}

type AddMemberRequest struct {
	GroupId string `json:"groupId"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
}

type RemoveMemberRequest struct {
	GroupId string `json:"groupId"`
	UserId  string `json:"userId"`
}

type UpdateMemberRoleRequest struct {
	GroupId string `json:"groupId"`
	UserId  string `json:"userId"`
	Role    string `json:"role"`
}

type GroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}

// GetGroupStatisticsRequest selects expenses dated in [From, To]. Zero values
// default to the last 30 days.
type GetGroupStatisticsRequest struct {
	GroupId string `json:"groupId"`
	From    int64  `json:"from,omitempty"`
	To      int64  `json:"to,omitempty"`
}

type CategoryTotal struct {
	Category string `json:"category"`
	Count    int32  `json:"count"`
	Amount   string `json:"amount"`
}

type PayerTotal struct {
	MemberId   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Count      int32  `json:"count"`
	Amount     string `json:"amount"`
}

type GetGroupStatisticsResponse struct {
	From       int64            `json:"from"`
	To         int64            `json:"to"`
	Count      int32            `json:"count"`
	Total      string           `json:"total"`
	Average    string           `json:"average"`
	Largest    string           `json:"largest"`
	Smallest   string           `json:"smallest"`
	Categories []*CategoryTotal `json:"categories"`
	TopPayers  []*PayerTotal    `json:"topPayers"`
}
