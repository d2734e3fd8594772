package scmprovider

import (
	"context"

	"github.com/jenkins-x/go-scm/scm"
)

// MergeDetails optional extra parameters
type MergeDetails struct {
	SHA           string
	MergeMethod   string
	CommitTitle   string
	CommitMessage string
}

// GetPullRequest returns the pull request
func (c *Client) GetPullRequest(owner, repo string, number int) (*scm.PullRequest, error) {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	pr, _, err := c.client.PullRequests.Find(ctx, fullName, number)
	return pr, err
}

// Merge merges a pull request
func (c *Client) Merge(owner, repo string, number int, details MergeDetails) error {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	mergeOptions := &scm.PullRequestMergeOptions{
		CommitTitle: details.CommitTitle,
		SHA:         details.SHA,
		MergeMethod: details.MergeMethod,
	}
	_, err := c.client.PullRequests.Merge(ctx, fullName, number, mergeOptions)
	return err
}
