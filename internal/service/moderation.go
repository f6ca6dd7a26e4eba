package service

import (
	"wayfarer/internal/models"
)

// ModerationKind discriminates the entity families sharing the admin
// moderation workflow. Each kind carries its own status enum and allowed
// transition table.
type ModerationKind string

const (
	KindForumPost      ModerationKind = "forum_post"
	KindContactMessage ModerationKind = "contact_message"
	KindInquiry        ModerationKind = "objective_inquiry"
	KindBooking        ModerationKind = "guide_booking"
	KindReview         ModerationKind = "review"
	KindSubmission     ModerationKind = "contest_submission"
	KindReport         ModerationKind = "report"
)

// Moderation actions. Kind-specific; the tables below map each to its
// legal source states.
const (
	ActionHide       = "hide"
	ActionRestore    = "restore"
	ActionMarkSpam   = "mark_spam"
	ActionUnmarkSpam = "unmark_spam"

	ActionMarkRead    = "mark_read"
	ActionMarkReplied = "mark_replied"
	ActionArchive     = "archive"

	ActionContact  = "contact"
	ActionConfirm  = "confirm"
	ActionComplete = "complete"
	ActionCancel   = "cancel"

	ActionApprove   = "approve"
	ActionUnapprove = "unapprove"

	ActionReject = "reject"
	ActionRemove = "remove"

	ActionResolve = "resolve"
	ActionDismiss = "dismiss"
)

// transitionRule describes one legal action for a kind: the states it may
// fire from and the state it lands in. An empty From set means the action
// is legal from any state except To itself.
type transitionRule struct {
	From []string
	To   string
}

var transitionTables = map[ModerationKind]map[string]transitionRule{
	KindForumPost: {
		ActionHide:       {From: []string{models.PostStatusActive}, To: models.PostStatusDeleted},
		ActionRestore:    {From: []string{models.PostStatusDeleted}, To: models.PostStatusActive},
		ActionMarkSpam:   {From: []string{models.PostStatusActive}, To: models.PostStatusSpam},
		ActionUnmarkSpam: {From: []string{models.PostStatusSpam}, To: models.PostStatusActive},
	},
	KindContactMessage: {
		ActionMarkRead:    {From: []string{models.InboxStatusNew}, To: models.InboxStatusRead},
		ActionMarkReplied: {To: models.InboxStatusReplied},
		ActionArchive:     {To: models.InboxStatusArchived},
	},
	KindInquiry: {
		ActionMarkRead:    {From: []string{models.InboxStatusNew}, To: models.InboxStatusRead},
		ActionMarkReplied: {To: models.InboxStatusReplied},
		ActionArchive:     {To: models.InboxStatusArchived},
	},
	KindBooking: {
		ActionContact:  {From: []string{models.BookingStatusPending}, To: models.BookingStatusContacted},
		ActionConfirm:  {From: []string{models.BookingStatusContacted}, To: models.BookingStatusConfirmed},
		ActionComplete: {From: []string{models.BookingStatusConfirmed}, To: models.BookingStatusCompleted},
		ActionCancel: {To: models.BookingStatusCancelled},
	},
	KindReview: {
		ActionApprove:   {From: []string{reviewStatusUnapproved}, To: reviewStatusApproved},
		ActionUnapprove: {From: []string{reviewStatusApproved}, To: reviewStatusUnapproved},
	},
	KindSubmission: {
		ActionApprove: {From: []string{models.SubmissionStatusPending}, To: models.SubmissionStatusApproved},
		ActionReject:  {From: []string{models.SubmissionStatusPending}, To: models.SubmissionStatusRejected},
		ActionRemove:  {From: []string{models.SubmissionStatusApproved}, To: models.SubmissionStatusRemoved},
	},
	KindReport: {
		ActionResolve: {From: []string{models.ReportStatusPending}, To: models.ReportStatusResolved},
		ActionDismiss: {From: []string{models.ReportStatusPending}, To: models.ReportStatusDismissed},
	},
}

// Review approval is a boolean column; the state machine views it through
// these synthetic statuses.
const (
	reviewStatusUnapproved = "unapproved"
	reviewStatusApproved   = "approved"
)

// KnownStates lists every state a kind can be in, for exhaustive checks.
func KnownStates(kind ModerationKind) []string {
	switch kind {
	case KindForumPost:
		return []string{models.PostStatusActive, models.PostStatusDeleted, models.PostStatusSpam}
	case KindContactMessage, KindInquiry:
		return []string{models.InboxStatusNew, models.InboxStatusRead, models.InboxStatusReplied, models.InboxStatusArchived}
	case KindBooking:
		return []string{
			models.BookingStatusPending,
			models.BookingStatusContacted,
			models.BookingStatusConfirmed,
			models.BookingStatusCancelled,
			models.BookingStatusCompleted,
		}
	case KindReview:
		return []string{reviewStatusUnapproved, reviewStatusApproved}
	case KindSubmission:
		return []string{
			models.SubmissionStatusPending,
			models.SubmissionStatusApproved,
			models.SubmissionStatusRejected,
			models.SubmissionStatusRemoved,
		}
	case KindReport:
		return []string{models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed}
	}
	return nil
}

// KnownActions lists every action defined for a kind.
func KnownActions(kind ModerationKind) []string {
	table := transitionTables[kind]
	actions := make([]string, 0, len(table))
	for a := range table {
		actions = append(actions, a)
	}
	return actions
}

// NextStatus is the total transition function: for any (kind, current,
// action) it either yields the new status or an INVALID_TRANSITION error,
// never a silent acceptance and never a panic.
func NextStatus(kind ModerationKind, current, action string) (string, error) {
	table, ok := transitionTables[kind]
	if !ok {
		return "", models.NewValidationError("Unknown moderation kind")
	}
	rule, ok := table[action]
	if !ok {
		return "", models.NewInvalidTransitionError(string(kind), current, action)
	}

	if len(rule.From) == 0 {
		// Wildcard action, still a no-op from its own target state.
		if current == rule.To {
			return "", models.NewInvalidTransitionError(string(kind), current, action)
		}
		return rule.To, nil
	}
	for _, from := range rule.From {
		if current == from {
			return rule.To, nil
		}
	}
	return "", models.NewInvalidTransitionError(string(kind), current, action)
}
