package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/jenkins-x/go-scm/scm"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/labels"
	"github.com/mergegate/mergegate/pkg/scmprovider"
	"github.com/mergegate/mergegate/pkg/scmprovider/fake"
)

func testPipeline(t *testing.T, spc *fake.SCMClient, minApprovals int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(spc, logrus.WithField("test", t.Name()), Config{
		BotName:      fake.Bot,
		MinApprovals: minApprovals,
	})
	if err != nil {
		t.Fatalf("unexpected error creating pipeline: %v", err)
	}
	return p
}

func commentEvent(author, body string) scmprovider.GenericCommentEvent {
	return scmprovider.GenericCommentEvent{
		IsPR:     true,
		InThread: true,
		Action:   scm.ActionCreate,
		Body:     body,
		Link:     "https://git.example.com/org/repo/pull/5#comment-1",
		Number:   5,
		Repo:     scm.Repository{Namespace: "org", Name: "repo"},
		Author:   scm.User{Login: author},
	}
}

// reviewEvent is a command arriving through a review body, which is not part
// of the comment thread.
func reviewEvent(author, body string) scmprovider.GenericCommentEvent {
	e := commentEvent(author, body)
	e.InThread = false
	e.Action = scm.ActionSubmitted
	return e
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  Config{BotName: "bot", MinApprovals: 1, HoldLabel: labels.Hold},
		},
		{
			name:    "missing bot name",
			cfg:     Config{MinApprovals: 1, HoldLabel: labels.Hold},
			wantErr: true,
		},
		{
			name:    "zero approvals",
			cfg:     Config{BotName: "bot", MinApprovals: 0, HoldLabel: labels.Hold},
			wantErr: true,
		},
		{
			name:    "missing hold label",
			cfg:     Config{BotName: "bot", MinApprovals: 1},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected a validation error, got none")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestHandleCommentIgnored(t *testing.T) {
	tests := []struct {
		name  string
		event scmprovider.GenericCommentEvent
	}{
		{
			name: "non-command body",
			event: scmprovider.GenericCommentEvent{
				IsPR:   true,
				Action: scm.ActionCreate,
				Body:   "looks good to me",
				Number: 5,
				Repo:   scm.Repository{Namespace: "org", Name: "repo"},
				Author: scm.User{Login: "collab"},
			},
		},
		{
			name: "edited comment",
			event: scmprovider.GenericCommentEvent{
				IsPR:   true,
				Action: scm.ActionUpdate,
				Body:   "/hold",
				Number: 5,
				Repo:   scm.Repository{Namespace: "org", Name: "repo"},
				Author: scm.User{Login: "collab"},
			},
		},
		{
			name: "comment on an issue",
			event: scmprovider.GenericCommentEvent{
				IsPR:   false,
				Action: scm.ActionCreate,
				Body:   "/hold",
				Number: 5,
				Repo:   scm.Repository{Namespace: "org", Name: "repo"},
				Author: scm.User{Login: "collab"},
			},
		},
		{
			name: "missing number",
			event: scmprovider.GenericCommentEvent{
				IsPR:   true,
				Action: scm.ActionCreate,
				Body:   "/hold",
				Repo:   scm.Repository{Namespace: "org", Name: "repo"},
				Author: scm.User{Login: "collab"},
			},
		},
		{
			name:  "own comment",
			event: commentEvent(fake.Bot, "/hold"),
		},
		{
			name:  "own comment with different casing",
			event: commentEvent(strings.ToUpper(fake.Bot), "/hold"),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spc := &fake.SCMClient{Collaborators: []string{"collab"}}
			p := testPipeline(t, spc, 1)
			if err := p.HandleComment(tc.event); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(spc.PullRequestLabelsAdded) != 0 {
				t.Errorf("unexpected labels added: %v", spc.PullRequestLabelsAdded)
			}
			if len(spc.PullRequestCommentsAdded) != 0 {
				t.Errorf("unexpected comments added: %v", spc.PullRequestCommentsAdded)
			}
			if len(spc.IssueCommentsAdded) != 0 {
				t.Errorf("unexpected issue comments added: %v", spc.IssueCommentsAdded)
			}
		})
	}
}

func TestHandleCommentPermissions(t *testing.T) {
	tests := []struct {
		name          string
		author        string
		collaborators []string
		lookupError   error
		expectAllowed bool
	}{
		{
			name:          "collaborator is allowed",
			author:        "collab",
			collaborators: []string{"collab"},
			expectAllowed: true,
		},
		{
			name:          "collaborator login casing differs",
			author:        "Collab",
			collaborators: []string{"collab"},
			expectAllowed: true,
		},
		{
			name:          "repo owner is allowed without collaborator status",
			author:        "org",
			expectAllowed: true,
		},
		{
			name:          "outsider is denied",
			author:        "drive-by",
			collaborators: []string{"collab"},
			expectAllowed: false,
		},
		{
			name:          "collaborator lookup failure denies",
			author:        "collab",
			collaborators: []string{"collab"},
			lookupError:   errors.New("server on fire"),
			expectAllowed: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spc := &fake.SCMClient{
				Collaborators:       tc.collaborators,
				IsCollaboratorError: tc.lookupError,
			}
			p := testPipeline(t, spc, 1)
			if err := p.HandleComment(commentEvent(tc.author, "/hold")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expectAllowed {
				if len(spc.PullRequestLabelsAdded) != 1 {
					t.Errorf("expected the hold label to be added, got %v", spc.PullRequestLabelsAdded)
				}
				if len(spc.PullRequestCommentsAdded) != 0 {
					t.Errorf("unexpected comments: %v", spc.PullRequestCommentsAdded)
				}
				return
			}
			if len(spc.PullRequestLabelsAdded) != 0 {
				t.Errorf("unexpected labels added: %v", spc.PullRequestLabelsAdded)
			}
			if len(spc.PullRequestCommentsAdded) != 1 {
				t.Fatalf("expected a denial comment, got %v", spc.PullRequestCommentsAdded)
			}
			if !strings.Contains(spc.PullRequestCommentsAdded[0], "you do not have permission to use `/hold`") {
				t.Errorf("unexpected denial comment: %s", spc.PullRequestCommentsAdded[0])
			}
		})
	}
}

func TestHandleCommentDuplicates(t *testing.T) {
	trigger := &scm.Comment{Body: "/hold", Author: scm.User{Login: "collab"}}
	tests := []struct {
		name            string
		comments        []*scm.Comment
		listError       error
		expectDuplicate bool
	}{
		{
			name:     "first use of the command",
			comments: []*scm.Comment{trigger},
		},
		{
			name: "same author repeated the command",
			comments: []*scm.Comment{
				{Body: "/hold", Author: scm.User{Login: "collab"}},
				trigger,
			},
			expectDuplicate: true,
		},
		{
			name: "same command from a different author",
			comments: []*scm.Comment{
				{Body: "/hold", Author: scm.User{Login: "other"}},
				trigger,
			},
		},
		{
			name: "earlier comment differs by whitespace",
			comments: []*scm.Comment{
				{Body: "/hold ", Author: scm.User{Login: "collab"}},
				trigger,
			},
		},
		{
			name: "earlier unrelated chatter",
			comments: []*scm.Comment{
				{Body: "any progress here?", Author: scm.User{Login: "collab"}},
				trigger,
			},
		},
		{
			name:      "comment listing failure lets the command through",
			comments:  []*scm.Comment{trigger},
			listError: errors.New("server on fire"),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spc := &fake.SCMClient{
				Collaborators:          []string{"collab"},
				IssueComments:          map[int][]*scm.Comment{5: tc.comments},
				ListIssueCommentsError: tc.listError,
			}
			p := testPipeline(t, spc, 1)
			if err := p.HandleComment(commentEvent("collab", "/hold")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expectDuplicate {
				if len(spc.PullRequestLabelsAdded) != 0 {
					t.Errorf("unexpected labels added: %v", spc.PullRequestLabelsAdded)
				}
				if len(spc.PullRequestCommentsAdded) != 1 {
					t.Fatalf("expected a duplicate reply, got %v", spc.PullRequestCommentsAdded)
				}
				if !strings.Contains(spc.PullRequestCommentsAdded[0], "you have already used `/hold` in this thread.") {
					t.Errorf("unexpected duplicate reply: %s", spc.PullRequestCommentsAdded[0])
				}
				return
			}
			if len(spc.PullRequestLabelsAdded) != 1 {
				t.Errorf("expected the hold label to be added, got %v", spc.PullRequestLabelsAdded)
			}
			if len(spc.PullRequestCommentsAdded) != 0 {
				t.Errorf("unexpected comments: %v", spc.PullRequestCommentsAdded)
			}
		})
	}
}

// A command in a review body or PR description is not part of the comment
// thread, so even the thread's newest comment counts as prior history.
func TestHandleCommentDuplicatesOutsideTheThread(t *testing.T) {
	tests := []struct {
		name            string
		comments        []*scm.Comment
		expectDuplicate bool
	}{
		{
			name: "identical command is the newest comment",
			comments: []*scm.Comment{
				{Body: "/hold", Author: scm.User{Login: "collab"}},
			},
			expectDuplicate: true,
		},
		{
			name: "identical command earlier in the thread",
			comments: []*scm.Comment{
				{Body: "/hold", Author: scm.User{Login: "collab"}},
				{Body: "any progress here?", Author: scm.User{Login: "other"}},
			},
			expectDuplicate: true,
		},
		{
			name: "no identical command in the thread",
			comments: []*scm.Comment{
				{Body: "any progress here?", Author: scm.User{Login: "collab"}},
			},
		},
		{
			name: "empty thread",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spc := &fake.SCMClient{
				Collaborators: []string{"collab"},
				IssueComments: map[int][]*scm.Comment{5: tc.comments},
			}
			p := testPipeline(t, spc, 1)
			if err := p.HandleComment(reviewEvent("collab", "/hold")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expectDuplicate {
				if len(spc.PullRequestLabelsAdded) != 0 {
					t.Errorf("unexpected labels added: %v", spc.PullRequestLabelsAdded)
				}
				if len(spc.PullRequestCommentsAdded) != 1 || !strings.Contains(spc.PullRequestCommentsAdded[0], "you have already used `/hold` in this thread.") {
					t.Errorf("expected a duplicate reply, got %v", spc.PullRequestCommentsAdded)
				}
				return
			}
			if len(spc.PullRequestLabelsAdded) != 1 {
				t.Errorf("expected the hold label to be added, got %v", spc.PullRequestLabelsAdded)
			}
		})
	}
}

func TestPipelineResolvesBotNameFromClient(t *testing.T) {
	spc := &fake.SCMClient{Collaborators: []string{"collab"}}
	p, err := NewPipeline(spc, logrus.WithField("test", t.Name()), Config{MinApprovals: 1})
	if err != nil {
		t.Fatalf("unexpected error creating pipeline: %v", err)
	}
	// The client's own identity must trip the self-loop guard.
	if err := p.HandleComment(commentEvent(fake.Bot, "/hold")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spc.PullRequestLabelsAdded) != 0 {
		t.Errorf("unexpected labels added: %v", spc.PullRequestLabelsAdded)
	}
	if len(spc.PullRequestCommentsAdded) != 0 {
		t.Errorf("unexpected comments added: %v", spc.PullRequestCommentsAdded)
	}
}

func TestRespondQuotesTheOriginalComment(t *testing.T) {
	spc := &fake.SCMClient{Collaborators: []string{"collab"}}
	p := testPipeline(t, spc, 1)
	if err := p.HandleComment(commentEvent("drive-by", "/hold")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spc.PullRequestCommentsAdded) != 1 {
		t.Fatalf("expected one comment, got %v", spc.PullRequestCommentsAdded)
	}
	reply := spc.PullRequestCommentsAdded[0]
	for _, want := range []string{"@drive-by:", ">/hold", "https://git.example.com/org/repo/pull/5#comment-1"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
}
