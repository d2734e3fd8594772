package scmprovider

import (
	"bytes"
	"context"
	"io"

	"github.com/jenkins-x/go-scm/scm"
	"github.com/pkg/errors"
)

// AssignIssue assigns users to an issue or pull request
func (c *Client) AssignIssue(owner, repo string, number int, logins []string) error {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	_, err := c.client.Issues.AssignIssue(ctx, fullName, number, logins)
	return err
}

// AddLabel adds a label
func (c *Client) AddLabel(owner, repo string, number int, label string, pr bool) error {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	if pr {
		_, err := c.client.PullRequests.AddLabel(ctx, fullName, number, label)
		return err
	}
	_, err := c.client.Issues.AddLabel(ctx, fullName, number, label)
	return err
}

// RemoveLabel removes a label
func (c *Client) RemoveLabel(owner, repo string, number int, label string, pr bool) error {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	if pr {
		_, err := c.client.PullRequests.DeleteLabel(ctx, fullName, number, label)
		return err
	}
	_, err := c.client.Issues.DeleteLabel(ctx, fullName, number, label)
	return err
}

// ListIssueComments list comments associated with an issue, oldest first
func (c *Client) ListIssueComments(org, repo string, number int) ([]*scm.Comment, error) {
	ctx := context.Background()
	fullName := c.repositoryName(org, repo)
	var allComments []*scm.Comment
	var resp *scm.Response
	var comments []*scm.Comment
	var err error
	firstRun := false
	opts := scm.ListOptions{
		Page: 1,
	}
	for !firstRun || (resp != nil && opts.Page <= resp.Page.Last) {
		comments, resp, err = c.client.Issues.ListComments(ctx, fullName, number, &opts)
		if err != nil {
			return nil, err
		}
		firstRun = true
		allComments = append(allComments, comments...)
		opts.Page++
	}
	return allComments, nil
}

// GetIssueLabels returns the issue labels
func (c *Client) GetIssueLabels(org, repo string, number int, pr bool) ([]*scm.Label, error) {
	ctx := context.Background()
	fullName := c.repositoryName(org, repo)
	var allLabels []*scm.Label
	var resp *scm.Response
	var labels []*scm.Label
	var err error
	firstRun := false
	opts := scm.ListOptions{
		Page: 1,
	}
	if pr {
		for !firstRun || (resp != nil && opts.Page <= resp.Page.Last) {
			labels, resp, err = c.client.PullRequests.ListLabels(ctx, fullName, number, &opts)
			if err != nil {
				return nil, err
			}
			firstRun = true
			allLabels = append(allLabels, labels...)
			opts.Page++
		}
		return allLabels, nil
	}
	for !firstRun || (resp != nil && opts.Page <= resp.Page.Last) {
		labels, resp, err = c.client.Issues.ListLabels(ctx, fullName, number, &opts)
		if err != nil {
			return nil, err
		}
		firstRun = true
		allLabels = append(allLabels, labels...)
		opts.Page++
	}
	return allLabels, nil
}

// CreateComment create a comment
func (c *Client) CreateComment(owner, repo string, number int, pr bool, comment string) error {
	fullName := c.repositoryName(owner, repo)
	commentInput := scm.CommentInput{
		Body: comment,
	}
	ctx := context.Background()
	if pr {
		_, response, err := c.client.PullRequests.CreateComment(ctx, fullName, number, &commentInput)
		return wrapCommentErr(fullName, number, response, err)
	}
	_, response, err := c.client.Issues.CreateComment(ctx, fullName, number, &commentInput)
	return wrapCommentErr(fullName, number, response, err)
}

// wrapCommentErr attaches the response body to a failed comment creation.
// Transport-level failures carry no response at all.
func wrapCommentErr(fullName string, number int, response *scm.Response, err error) error {
	if err == nil {
		return nil
	}
	if response == nil || response.Body == nil {
		return errors.Wrapf(err, "creating comment on %s#%d", fullName, number)
	}
	var b bytes.Buffer
	_, cperr := io.Copy(&b, response.Body)
	if cperr != nil {
		return errors.Wrapf(cperr, "response: %s", b.String())
	}
	return errors.Wrapf(err, "response: %s", b.String())
}
