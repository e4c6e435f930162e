package service

import (
	"context"

	"github.com/mmynk/settleup/internal/apperr"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
)

// callerID returns the authenticated user ID set by the auth middleware.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", auth.ErrMissingToken
	}
	return userID, nil
}

func requireMember(group *models.Group, userID string) error {
	if !group.IsMember(userID) {
		return apperr.Forbidden("you are not a member of this group")
	}
	return nil
}

func requireAdmin(group *models.Group, userID string) error {
	if err := requireMember(group, userID); err != nil {
		return err
	}
	if !group.IsAdmin(userID) {
		return apperr.Forbidden("only group admins can do this")
	}
	return nil
}

// canEditExpense allows the expense creator and group admins.
func canEditExpense(group *models.Group, expense *models.Expense, userID string) error {
	if err := requireMember(group, userID); err != nil {
		return err
	}
	if expense.CreatedBy != userID && !group.IsAdmin(userID) {
		return apperr.Forbidden("only the creator or a group admin can change this expense")
	}
	return nil
}

// canSettle allows the participant, the payer and group admins.
func canSettle(group *models.Group, expense *models.Expense, participantID, userID string) error {
	if userID == participantID || userID == expense.PayerID {
		return nil
	}
	if group.IsAdmin(userID) {
		return nil
	}
	return apperr.Forbidden("only the participant, the payer or a group admin can settle this share")
}
