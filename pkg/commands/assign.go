package commands

import (
	"github.com/jenkins-x/go-scm/scm"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// HandlePullRequestOpened assigns the repository owner as the default
// reviewer of a freshly opened pull request. This is independent of the
// command pipeline and best effort: failures are logged, never surfaced to
// the thread.
func (p *Pipeline) HandlePullRequestOpened(hook *scm.PullRequestHook) error {
	if hook.Action != scm.ActionOpen {
		return nil
	}
	org := hook.Repo.Namespace
	repo := hook.Repo.Name
	number := hook.PullRequest.Number
	log := p.log.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  org,
		scmprovider.RepoLogField: repo,
		scmprovider.PrLogField:   number,
		"author":                 hook.PullRequest.Author.Login,
	})
	if err := p.spc.AssignIssue(org, repo, number, []string{org}); err != nil {
		log.WithError(err).Errorf("Failed to assign %s as the default reviewer.", org)
		return nil
	}
	log.Infof("Assigned %s as the default reviewer of %s/%s#%d.", org, org, repo, number)
	return nil
}
