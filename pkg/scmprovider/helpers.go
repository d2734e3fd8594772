package scmprovider

import (
	"strings"

	"github.com/jenkins-x/go-scm/scm"
)

const (
	// EventGUID is sent by the provider in a header of every webhook request.
	// Used as a log field across the webhook server.
	EventGUID = "event-GUID"
	// PrLogField is the number of a PR.
	PrLogField = "pr"
	// OrgLogField is the organization of a PR.
	OrgLogField = "org"
	// RepoLogField is the repository of a PR.
	RepoLogField = "repo"
)

// NormLogin normalizes login strings
var NormLogin = strings.ToLower

// GenericCommentEvent is a fake event type that is instantiated for any
// webhook event that contains comment like content. The specific events that
// are also handled as GenericCommentEvents are:
// - issue_comment events
// - pull_request_review events (the review body is the comment body)
// - pull_request_review_comment events
type GenericCommentEvent struct {
	IsPR bool
	// InThread is true when the triggering body is itself a comment on the
	// thread, so a fresh comment listing includes it as the newest element.
	// Review bodies and PR descriptions are not part of the thread.
	InThread    bool
	Action      scm.Action
	Body        string
	Link        string
	Number      int
	Repo        scm.Repository
	Author      scm.User
	IssueAuthor scm.User
	Assignees   []scm.User
	IssueState  string
	GUID        string
}

// ReviewAction is the action that a review can be made with.
type ReviewAction string

// Possible review actions. Leave Action blank for a pending review.
const (
	Approve        ReviewAction = "APPROVE"
	RequestChanges ReviewAction = "REQUEST_CHANGES"
	Comment        ReviewAction = "COMMENT"
)

// DraftReview is what we give the provider when we want to make a PR review.
// This is different than what we receive when we ask for a review.
type DraftReview struct {
	// If unspecified, defaults to the most recent commit in the PR.
	CommitSHA string `json:"commit_id,omitempty"`
	Body      string `json:"body"`
	// If unspecified, defaults to PENDING.
	Action ReviewAction `json:"event,omitempty"`
}

// HasLabel checks if label is in the label set "issueLabels".
func HasLabel(label string, issueLabels []*scm.Label) bool {
	for _, l := range issueLabels {
		if strings.EqualFold(l.Name, label) {
			return true
		}
	}
	return false
}

// ReviewIsApproved reports whether a review state records an approval.
// The review webhook returns state as lowercase, while the review API
// returns state as uppercase, so the comparison folds case.
func ReviewIsApproved(state string) bool {
	return strings.ToUpper(state) == scm.ReviewStateApproved
}
