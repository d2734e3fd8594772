package scmprovider

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jenkins-x/go-scm/scm/driver/github"
	"github.com/pkg/errors"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

// A transport-level failure carries no response at all; the error must come
// back wrapped rather than as a panic while reading the response body.
func TestCreateCommentTransportFailure(t *testing.T) {
	scmClient := github.NewDefault()
	scmClient.Client = &http.Client{Transport: failingTransport{}}
	c := ToClient(scmClient, "some-bot")

	for _, pr := range []bool{true, false} {
		err := c.CreateComment("org", "repo", 5, pr, "some comment")
		if err == nil {
			t.Fatalf("expected an error creating a comment (pr=%v), got none", pr)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("error should carry the transport failure, got: %v", err)
		}
		if !strings.Contains(err.Error(), "org/repo#5") {
			t.Errorf("error should name the thread, got: %v", err)
		}
	}
}
