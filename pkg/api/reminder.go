package api

type GetReminderCandidatesRequest struct {
	GroupId string `json:"groupId"`
	// MinimumAmount defaults to the server's configured minimum.
	MinimumAmount string `json:"minimumAmount,omitempty"`
}

type Candidate struct {
	MemberId    string `json:"memberId"`
	MemberName  string `json:"memberName"`
	PhoneNumber string `json:"phoneNumber"`
	AmountOwed  string `json:"amountOwed"`
}

type GetReminderCandidatesResponse struct {
	Candidates []*Candidate `json:"candidates"`
	TotalOwed  string       `json:"totalOwed"`
}

type SendReminderRequest struct {
	GroupId       string `json:"groupId"`
	MemberId      string `json:"memberId"`
	MessageType   string `json:"messageType,omitempty"`
	CustomMessage string `json:"customMessage,omitempty"`
}

type ReminderResult struct {
	MemberId   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Amount     string `json:"amount"`
	Success    bool   `json:"success"`
	MessageId  string `json:"messageId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SendReminderResponse struct {
	Result *ReminderResult `json:"result"`
}

type SendBulkRemindersRequest struct {
	GroupId       string `json:"groupId"`
	MinimumAmount string `json:"minimumAmount,omitempty"`
	MessageType   string `json:"messageType,omitempty"`
	CustomMessage string `json:"customMessage,omitempty"`
}

type SendBulkRemindersResponse struct {
	Results []*ReminderResult `json:"results"`
	Sent    int32             `json:"sent"`
	Failed  int32             `json:"failed"`
}

// ScheduleReminderRequest takes exactly one of SendAt (one-shot) or Cron
// (standard 5-field expression, recurring).
type ScheduleReminderRequest struct {
	GroupId       string `json:"groupId"`
	MemberId      string `json:"memberId"`
	SendAt        int64  `json:"sendAt,omitempty"`
	Cron          string `json:"cron,omitempty"`
	MessageType   string `json:"messageType,omitempty"`
	CustomMessage string `json:"customMessage,omitempty"`
}

type ScheduledReminder struct {
	Id            string `json:"id"`
	GroupId       string `json:"groupId"`
	MemberId      string `json:"memberId"`
	CreatedBy     string `json:"createdBy"`
	MessageType   string `json:"messageType"`
	CustomMessage string `json:"customMessage,omitempty"`
	Cron          string `json:"cron,omitempty"`
	NextRunAt     int64  `json:"nextRunAt"`
	Status        string `json:"status"`
	LastError     string `json:"lastError,omitempty"`
	CreatedAt     int64  `json:"createdAt"`
}

type ScheduledReminderResponse struct {
	Reminder *ScheduledReminder `json:"reminder"`
}

type ListScheduledRemindersRequest struct {
	GroupId string `json:"groupId"`
}

type ListScheduledRemindersResponse struct {
	Reminders []*ScheduledReminder `json:"reminders"`
}

type CancelScheduledReminderRequest struct {
	ReminderId string `json:"reminderId"`
}

type ListReminderHistoryRequest struct {
	GroupId string `json:"groupId"`
}

type ReminderLogEntry struct {
	Id          string `json:"id"`
	MemberId    string `json:"memberId"`
	SenderId    string `json:"senderId"`
	Amount      string `json:"amount"`
	MessageType string `json:"messageType"`
	Success     bool   `json:"success"`
	MessageId   string `json:"messageId,omitempty"`
	Error       string `json:"error,omitempty"`
	SentAt      int64  `json:"sentAt"`
}

type ListReminderHistoryResponse struct {
	Entries []*ReminderLogEntry `json:"entries"`
}

type SendTestMessageRequest struct {
	Message string `json:"message,omitempty"`
}

type SendTestMessageResponse struct {
	MessageId string `json:"messageId"`
}
