/*
Copyright 2016 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package webhook

import (
	"github.com/hashicorp/go-multierror"
	"github.com/jenkins-x/go-scm/scm"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// handleIssueCommentEvent handles comment events on issues and pull requests
func (o *Controller) handleIssueCommentEvent(l *logrus.Entry, ic *scm.IssueCommentHook) error {
	l = l.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  ic.Repo.Namespace,
		scmprovider.RepoLogField: ic.Repo.Name,
		scmprovider.PrLogField:   ic.Issue.Number,
		"author":                 ic.Comment.Author.Login,
		"url":                    ic.Comment.Link,
	})
	l.Infof("Issue comment %s.", ic.Action)
	return o.pipeline.HandleComment(scmprovider.GenericCommentEvent{
		GUID:        ic.GUID,
		IsPR:        ic.Issue.PullRequest != nil,
		InThread:    true,
		Action:      ic.Action,
		Body:        ic.Comment.Body,
		Link:        ic.Comment.Link,
		Number:      ic.Issue.Number,
		Repo:        ic.Repo,
		Author:      ic.Comment.Author,
		IssueAuthor: ic.Issue.Author,
		Assignees:   ic.Issue.Assignees,
		IssueState:  ic.Issue.State,
	})
}

// handlePullRequestCommentEvent handles pull request comment events
func (o *Controller) handlePullRequestCommentEvent(l *logrus.Entry, pc *scm.PullRequestCommentHook) error {
	l = l.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  pc.Repo.Namespace,
		scmprovider.RepoLogField: pc.Repo.Name,
		scmprovider.PrLogField:   pc.PullRequest.Number,
		"author":                 pc.Comment.Author.Login,
		"url":                    pc.Comment.Link,
	})
	l.Infof("PR comment %s.", pc.Action)
	return o.pipeline.HandleComment(scmprovider.GenericCommentEvent{
		GUID:        pc.GUID,
		IsPR:        true,
		InThread:    true,
		Action:      pc.Action,
		Body:        pc.Comment.Body,
		Link:        pc.Comment.Link,
		Number:      pc.PullRequest.Number,
		Repo:        pc.Repo,
		Author:      pc.Comment.Author,
		IssueAuthor: pc.PullRequest.Author,
		Assignees:   pc.PullRequest.Assignees,
		IssueState:  pc.PullRequest.State,
	})
}

// handleReviewEvent handles a PR review event. The review body is treated as
// comment text so a command submitted through a review runs the same
// pipeline as one posted as a comment.
func (o *Controller) handleReviewEvent(l *logrus.Entry, re *scm.ReviewHook) error {
	l = l.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  re.Repo.Namespace,
		scmprovider.RepoLogField: re.Repo.Name,
		scmprovider.PrLogField:   re.PullRequest.Number,
		"review":                 re.Review.ID,
		"reviewer":               re.Review.Author.Login,
		"url":                    re.Review.Link,
	})
	l.Infof("Review %s.", re.Action)
	return o.pipeline.HandleComment(scmprovider.GenericCommentEvent{
		GUID:        re.GUID,
		IsPR:        true,
		Action:      re.Action,
		Body:        re.Review.Body,
		Link:        re.Review.Link,
		Number:      re.PullRequest.Number,
		Repo:        re.Repo,
		Author:      re.Review.Author,
		IssueAuthor: re.PullRequest.Author,
		Assignees:   re.PullRequest.Assignees,
		IssueState:  re.PullRequest.State,
	})
}

// handlePullRequestEvent handles a pull request event. On creation the
// default reviewer is assigned and the PR body is run through the command
// pipeline, so a description containing a command takes effect immediately.
func (o *Controller) handlePullRequestEvent(l *logrus.Entry, pr *scm.PullRequestHook) error {
	l = l.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  pr.Repo.Namespace,
		scmprovider.RepoLogField: pr.Repo.Name,
		scmprovider.PrLogField:   pr.PullRequest.Number,
		"author":                 pr.PullRequest.Author.Login,
	})
	l.Infof("Pull request %s.", pr.Action)
	if pr.Action != scm.ActionOpen {
		return nil
	}
	var errs error
	if err := o.pipeline.HandlePullRequestOpened(pr); err != nil {
		errs = multierror.Append(errs, err)
	}
	err := o.pipeline.HandleComment(scmprovider.GenericCommentEvent{
		GUID:        pr.GUID,
		IsPR:        true,
		Action:      scm.ActionCreate,
		Body:        pr.PullRequest.Body,
		Link:        pr.PullRequest.Link,
		Number:      pr.PullRequest.Number,
		Repo:        pr.Repo,
		Author:      pr.PullRequest.Author,
		IssueAuthor: pr.PullRequest.Author,
		Assignees:   pr.PullRequest.Assignees,
		IssueState:  pr.PullRequest.State,
	})
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}
