// Package models defines the core domain models for settleup.
//
// # Models
//
//   - User: registered account with a phone number for SMS reminders
//   - Group, Membership: a set of users who share expenses; members are admins or plain members
//   - Expense, Participation: one shared cost and each participant's owed share of it
//   - Settlement: payment record written when a participation is settled
//   - ScheduledReminder, ReminderLog: reminder scheduling and dispatch history
//
// # Conventions
//
//  1. Currency amounts are decimal.Decimal with two minor-unit digits, never float64
//  2. Timestamps are Unix seconds (int64)
//  3. Relationships use ID strings instead of pointers
//  4. Participations keep the participant input order (Position), which decides
//     who absorbs a rounding residual
package models
