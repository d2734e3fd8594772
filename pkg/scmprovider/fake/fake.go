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

package fake

import (
	"fmt"

	"github.com/jenkins-x/go-scm/scm"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

const botName = "mergegate-bot"

// Bot is the exported botName
const Bot = botName

// SCMClient is like scmprovider.Client, but fake.
type SCMClient struct {
	Collaborators       []string
	IssueComments       map[int][]*scm.Comment
	IssueCommentID      int
	PullRequests        map[int]*scm.PullRequest
	PullRequestComments map[int][]*scm.Comment
	ReviewID            int
	Reviews             map[int][]*scm.Review

	// org/repo#number:label
	IssueLabelsAdded          []string
	IssueLabelsRemoved        []string
	PullRequestLabelsAdded    []string
	PullRequestLabelsExisting []string
	PullRequestLabelsRemoved  []string

	// org/repo#number:body
	IssueCommentsAdded       []string
	PullRequestCommentsAdded []string

	// org/repo#number:body
	ReviewsCreated []string

	// org/repo#number:assignee
	AssigneesAdded []string

	// pull request numbers that were merged
	Merged []int

	// Errors to inject into specific calls.
	IsCollaboratorError    error
	ListIssueCommentsError error
	CreateReviewError      error
	MergeError             error
	RemoveLabelError       error
	AddLabelError          error
}

// ProviderType returns the provider type
func (f *SCMClient) ProviderType() string {
	return "fake"
}

// BotName returns authenticated login.
func (f *SCMClient) BotName() (string, error) {
	return botName, nil
}

// SetBotName sets the bot name
func (f *SCMClient) SetBotName(string) {}

// ListIssueComments returns comments, oldest first.
func (f *SCMClient) ListIssueComments(owner, repo string, number int) ([]*scm.Comment, error) {
	if f.ListIssueCommentsError != nil {
		return nil, f.ListIssueCommentsError
	}
	return append([]*scm.Comment{}, f.IssueComments[number]...), nil
}

// ListReviews returns reviews.
func (f *SCMClient) ListReviews(owner, repo string, number int) ([]*scm.Review, error) {
	return append([]*scm.Review{}, f.Reviews[number]...), nil
}

// CreateComment adds a comment to a PR
func (f *SCMClient) CreateComment(owner, repo string, number int, pr bool, comment string) error {
	if pr {
		f.PullRequestCommentsAdded = append(f.PullRequestCommentsAdded, fmt.Sprintf("%s/%s#%d:%s", owner, repo, number, comment))
		if f.PullRequestComments == nil {
			f.PullRequestComments = make(map[int][]*scm.Comment)
		}
		f.PullRequestComments[number] = append(f.PullRequestComments[number], &scm.Comment{
			ID:     f.IssueCommentID,
			Body:   comment,
			Author: scm.User{Login: botName},
		})
	} else {
		f.IssueCommentsAdded = append(f.IssueCommentsAdded, fmt.Sprintf("%s/%s#%d:%s", owner, repo, number, comment))
		if f.IssueComments == nil {
			f.IssueComments = make(map[int][]*scm.Comment)
		}
		f.IssueComments[number] = append(f.IssueComments[number], &scm.Comment{
			ID:     f.IssueCommentID,
			Body:   comment,
			Author: scm.User{Login: botName},
		})
	}
	f.IssueCommentID++
	return nil
}

// CreateReview adds a review to a PR
func (f *SCMClient) CreateReview(org, repo string, number int, r scmprovider.DraftReview) error {
	if f.CreateReviewError != nil {
		return f.CreateReviewError
	}
	f.ReviewsCreated = append(f.ReviewsCreated, fmt.Sprintf("%s/%s#%d:%s", org, repo, number, r.Body))
	if f.Reviews == nil {
		f.Reviews = make(map[int][]*scm.Review)
	}
	f.Reviews[number] = append(f.Reviews[number], &scm.Review{
		ID:     f.ReviewID,
		Author: scm.User{Login: botName},
		Body:   r.Body,
		State:  scm.ReviewStateApproved,
	})
	f.ReviewID++
	return nil
}

// GetPullRequest returns details about the PR.
func (f *SCMClient) GetPullRequest(owner, repo string, number int) (*scm.PullRequest, error) {
	val, exists := f.PullRequests[number]
	if !exists {
		return nil, fmt.Errorf("pull request number %d does not exist", number)
	}
	return val, nil
}

// Merge merges a PR.
func (f *SCMClient) Merge(owner, repo string, number int, details scmprovider.MergeDetails) error {
	if f.MergeError != nil {
		return f.MergeError
	}
	f.Merged = append(f.Merged, number)
	return nil
}

// GetIssueLabels gets labels on an issue
func (f *SCMClient) GetIssueLabels(owner, repo string, number int, pr bool) ([]*scm.Label, error) {
	prefix := fmt.Sprintf("%s/%s#%d:", owner, repo, number)
	la := []*scm.Label{}
	var existing []string
	if pr {
		existing = append(existing, f.PullRequestLabelsExisting...)
		existing = append(existing, f.PullRequestLabelsAdded...)
	} else {
		existing = append(existing, f.IssueLabelsAdded...)
	}
	removed := f.PullRequestLabelsRemoved
	if !pr {
		removed = f.IssueLabelsRemoved
	}
	for _, l := range existing {
		if len(l) <= len(prefix) || l[:len(prefix)] != prefix {
			continue
		}
		gone := false
		for _, r := range removed {
			if r == l {
				gone = true
				break
			}
		}
		if !gone {
			la = append(la, &scm.Label{Name: l[len(prefix):]})
		}
	}
	return la, nil
}

// AddLabel adds a label
func (f *SCMClient) AddLabel(owner, repo string, number int, label string, pr bool) error {
	if f.AddLabelError != nil {
		return f.AddLabelError
	}
	labelString := fmt.Sprintf("%s/%s#%d:%s", owner, repo, number, label)
	if pr {
		f.PullRequestLabelsAdded = append(f.PullRequestLabelsAdded, labelString)
	} else {
		f.IssueLabelsAdded = append(f.IssueLabelsAdded, labelString)
	}
	return nil
}

// RemoveLabel removes a label
func (f *SCMClient) RemoveLabel(owner, repo string, number int, label string, pr bool) error {
	if f.RemoveLabelError != nil {
		return f.RemoveLabelError
	}
	labelString := fmt.Sprintf("%s/%s#%d:%s", owner, repo, number, label)
	if pr {
		for _, l := range append(append([]string{}, f.PullRequestLabelsExisting...), f.PullRequestLabelsAdded...) {
			if l == labelString {
				f.PullRequestLabelsRemoved = append(f.PullRequestLabelsRemoved, labelString)
				return nil
			}
		}
		return fmt.Errorf("cannot remove %v from %s/%s#%d", label, owner, repo, number)
	}
	f.IssueLabelsRemoved = append(f.IssueLabelsRemoved, labelString)
	return nil
}

// AssignIssue adds assignees.
func (f *SCMClient) AssignIssue(owner, repo string, number int, assignees []string) error {
	for _, a := range assignees {
		f.AssigneesAdded = append(f.AssigneesAdded, fmt.Sprintf("%s/%s#%d:%s", owner, repo, number, a))
	}
	return nil
}

// IsCollaborator returns true if the user is a collaborator of the repo.
func (f *SCMClient) IsCollaborator(org, repo, login string) (bool, error) {
	if f.IsCollaboratorError != nil {
		return false, f.IsCollaboratorError
	}
	normed := scmprovider.NormLogin(login)
	for _, collab := range f.Collaborators {
		if scmprovider.NormLogin(collab) == normed {
			return true, nil
		}
	}
	return false, nil
}
