package scmprovider

import (
	"context"
)

// IsCollaborator check if a user is collaborator to a repository
func (c *Client) IsCollaborator(owner, repo, login string) (bool, error) {
	ctx := context.Background()
	fullName := c.repositoryName(owner, repo)
	flag, _, err := c.client.Repositories.IsCollaborator(ctx, fullName, login)
	return flag, err
}
