package util

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/jenkins-x/go-scm/scm"
	"github.com/jenkins-x/go-scm/scm/factory"
	"github.com/jenkins-x/go-scm/scm/transport"
	"golang.org/x/oauth2"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// AddAuthToSCMClient configures an existing go-scm client with transport and
// authorization using the given token
func AddAuthToSCMClient(client *scm.Client, token string) {
	if client.Driver.String() == "gitlab" || client.Driver.String() == "bitbucketcloud" {
		client.Client = &http.Client{
			Transport: &transport.PrivateToken{
				Token: token,
			},
		}
		return
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	client.Client = oauth2.NewClient(context.Background(), ts)
}

// GetGitServer returns the git server base URL from the environment
func GetGitServer() string {
	serverURL := os.Getenv("GIT_SERVER")

	if serverURL == "" {
		serverURL = "https://github.com"
	}
	return serverURL
}

// GetSCMClient gets the wrapped SCM client and the underlying go-scm client
// for the configured server
func GetSCMClient() (scmprovider.SCMClient, *scm.Client, error) {
	kind := GitKind()
	serverURL := GetGitServer()
	token, err := GetSCMToken(kind)
	if err != nil {
		return nil, nil, err
	}
	client, err := factory.NewClient(kind, serverURL, token)
	if err != nil {
		return nil, nil, err
	}
	AddAuthToSCMClient(client, token)
	scmClient := scmprovider.ToClient(client, GetBotName())
	return scmClient, client, nil
}

// GitKind gets the git kind from the environment
func GitKind() string {
	kind := os.Getenv("GIT_KIND")
	if kind == "" {
		kind = "github"
	}
	return kind
}

// GetBotName returns the bot name from the environment
func GetBotName() string {
	botName := os.Getenv("GIT_USER")
	if botName == "" {
		botName = "mergegate-bot"
	}
	return botName
}

// GetSCMToken gets the SCM secret from the environment
func GetSCMToken(gitKind string) (string, error) {
	envName := "GIT_TOKEN"
	value := os.Getenv(envName)
	if value == "" {
		return value, fmt.Errorf("no token available for git kind %s at environment variable $%s", gitKind, envName)
	}
	return value, nil
}

// HMACToken gets the HMAC token from the environment
func HMACToken() string {
	return os.Getenv("HMAC_TOKEN")
}
