package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// approvalBody is the body of the review the bot submits for an /approve.
const approvalBody = "Approving this pull request in response to an `/approve` command."

// handleApprove validates that a pull request may be approved, records the
// approval as a review authored by the bot, and merges once the approval
// count reaches the configured threshold.
//
// The approval count is the number of distinct approvers in the review
// snapshot fetched before the new review was created, excluding the current
// actor, plus one for the review just created. The freshly created review is
// not guaranteed to be visible in a re-fetch, so it is never read back.
func (p *Pipeline) handleApprove(log *logrus.Entry, e *scmprovider.GenericCommentEvent) error {
	org := e.Repo.Namespace
	repo := e.Repo.Name
	number := e.Number
	actor := e.Author.Login

	pr, err := p.spc.GetPullRequest(org, repo, number)
	if err != nil {
		return errors.Wrapf(err, "failed to get pull request %s/%s#%d", org, repo, number)
	}

	// Not every provider populates labels on the PR itself, so fetch them.
	prLabels, err := p.spc.GetIssueLabels(org, repo, number, true)
	if err != nil {
		return errors.Wrapf(err, "failed to list labels on %s/%s#%d", org, repo, number)
	}
	if scmprovider.HasLabel(p.cfg.HoldLabel, prLabels) {
		return p.respond(e, fmt.Sprintf("this pull request is on hold. Remove the `%s` label with `/unhold` before approving.", p.cfg.HoldLabel))
	}
	if pr.Draft {
		return p.respond(e, "this pull request is a draft and cannot be approved.")
	}

	reviews, err := p.spc.ListReviews(org, repo, number)
	if err != nil {
		return errors.Wrapf(err, "failed to list reviews on %s/%s#%d", org, repo, number)
	}
	for _, review := range reviews {
		if scmprovider.NormLogin(review.Author.Login) == scmprovider.NormLogin(actor) && scmprovider.ReviewIsApproved(review.State) {
			return p.respond(e, "you have already approved this pull request.")
		}
	}

	err = p.spc.CreateReview(org, repo, number, scmprovider.DraftReview{
		Action: scmprovider.Approve,
		Body:   approvalBody,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create the approval review.")
		return p.respond(e, fmt.Sprintf("cannot approve this pull request: %v", err))
	}
	log.Infof("Approved %s/%s#%d on behalf of %s.", org, repo, number, actor)

	count := 1
	seen := map[string]bool{scmprovider.NormLogin(actor): true}
	for _, review := range reviews {
		login := scmprovider.NormLogin(review.Author.Login)
		if scmprovider.ReviewIsApproved(review.State) && !seen[login] {
			seen[login] = true
			count++
		}
	}

	if count < p.cfg.MinApprovals {
		return p.respond(e, fmt.Sprintf("this pull request now has %d of %d required approvals.", count, p.cfg.MinApprovals))
	}

	if err := p.spc.Merge(org, repo, number, scmprovider.MergeDetails{}); err != nil {
		log.WithError(err).Error("Failed to merge the pull request.")
		return p.respond(e, fmt.Sprintf("cannot merge this pull request: %v", err))
	}
	log.Infof("Merged %s/%s#%d.", org, repo, number)
	return p.respond(e, fmt.Sprintf("pull request #%d has %d of %d required approvals and was merged.", number, count, p.cfg.MinApprovals))
}
