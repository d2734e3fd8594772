package scmprovider

import (
	"fmt"
	"os"

	"github.com/jenkins-x/go-scm/scm"
)

// ToClient wraps the go-scm client in the API the command pipeline expects
func ToClient(client *scm.Client, botName string) *Client {
	return &Client{client: client, botName: botName}
}

// SCMClient is an interface providing all functions on the Client struct.
type SCMClient interface {
	// Functions implemented in client.go
	BotName() (string, error)
	SetBotName(string)
	ProviderType() string

	// Functions implemented in issues.go
	AddLabel(owner, repo string, number int, label string, pr bool) error
	RemoveLabel(owner, repo string, number int, label string, pr bool) error
	GetIssueLabels(org, repo string, number int, pr bool) ([]*scm.Label, error)
	ListIssueComments(org, repo string, number int) ([]*scm.Comment, error)
	CreateComment(owner, repo string, number int, pr bool, comment string) error
	AssignIssue(owner, repo string, number int, logins []string) error

	// Functions implemented in pull_requests.go
	GetPullRequest(owner, repo string, number int) (*scm.PullRequest, error)
	Merge(owner, repo string, number int, details MergeDetails) error

	// Functions implemented in reviews.go
	ListReviews(owner, repo string, number int) ([]*scm.Review, error)
	CreateReview(owner, repo string, number int, review DraftReview) error

	// Functions implemented in repositories.go
	IsCollaborator(owner, repo, login string) (bool, error)
}

// Client represents the narrow API the command pipeline needs on top of go-scm
type Client struct {
	client  *scm.Client
	botName string
}

// BotName returns the bot name
func (c *Client) BotName() (string, error) {
	botName := c.botName
	if botName == "" {
		botName = os.Getenv("GIT_USER")
		if botName == "" {
			botName = "mergegate-bot"
		}
		c.botName = botName
	}
	return botName, nil
}

// SetBotName sets the bot name
func (c *Client) SetBotName(botName string) {
	c.botName = botName
}

// ProviderType returns the type of the underlying SCM provider
func (c *Client) ProviderType() string {
	return c.client.Driver.String()
}

func (c *Client) repositoryName(owner string, repo string) string {
	return fmt.Sprintf("%s/%s", owner, repo)
}
