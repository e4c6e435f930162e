package reminder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// maxMessageLength fits a body into two SMS segments.
const maxMessageLength = 320

// MessageData fills the reminder templates.
type MessageData struct {
	MemberName string
	GroupName  string
	SenderName string
	Amount     decimal.Decimal
}

func formatAmount(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// ReminderMessage renders the reminder body for messageType. A non-empty
// custom message replaces the template.
func ReminderMessage(messageType models.MessageType, custom string, data MessageData) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return truncate(custom)
	}

	amount := formatAmount(data.Amount)
	var body string
	switch messageType {
	case models.MessageUrgent:
		body = fmt.Sprintf("Hi %s, you have an outstanding balance of %s in '%s'. "+
			"Please settle this amount soon. Contact %s if you have any questions.",
			data.MemberName, amount, data.GroupName, data.SenderName)
	case models.MessageFinal:
		body = fmt.Sprintf("FINAL NOTICE: %s, your outstanding balance of %s in '%s' needs immediate attention. "+
			"Please contact %s to resolve this matter.",
			data.MemberName, amount, data.GroupName, data.SenderName)
	default:
		body = fmt.Sprintf("Hi %s! Friendly reminder that you have an outstanding balance of %s in the '%s' group. "+
			"Please settle when convenient. Thanks! - %s",
			data.MemberName, amount, data.GroupName, data.SenderName)
	}
	return truncate(body)
}

// SettlementMessage confirms to the participant that their payment was recorded.
func SettlementMessage(participantName, payerName, groupName string, amount decimal.Decimal) string {
	return truncate(fmt.Sprintf("Hi %s! Your payment of %s to %s in '%s' has been recorded. Thank you for settling up!",
		participantName, formatAmount(amount), payerName, groupName))
}

// truncate shortens body to maxMessageLength characters, ending in "...".
func truncate(body string) string {
	runes := []rune(body)
	if len(runes) <= maxMessageLength {
		return body
	}
	return string(runes[:maxMessageLength-3]) + "..."
}
