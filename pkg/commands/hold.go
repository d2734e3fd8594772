package commands

import (
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// handleHold adds the hold label to the pull request. Adding a label that is
// already present is not an error on any supported provider, so there are no
// precondition checks. No comment is posted.
func (p *Pipeline) handleHold(log *logrus.Entry, e *scmprovider.GenericCommentEvent) error {
	org := e.Repo.Namespace
	repo := e.Repo.Name
	if err := p.spc.AddLabel(org, repo, e.Number, p.cfg.HoldLabel, e.IsPR); err != nil {
		log.WithError(err).Errorf("Failed to add %q label to %s/%s#%d.", p.cfg.HoldLabel, org, repo, e.Number)
		return nil
	}
	log.Infof("Added %q label to %s/%s#%d.", p.cfg.HoldLabel, org, repo, e.Number)
	return nil
}

// handleUnhold removes the hold label. When the label is absent the provider
// call fails; that failure is logged and swallowed rather than surfaced to
// the thread.
func (p *Pipeline) handleUnhold(log *logrus.Entry, e *scmprovider.GenericCommentEvent) error {
	org := e.Repo.Namespace
	repo := e.Repo.Name
	if err := p.spc.RemoveLabel(org, repo, e.Number, p.cfg.HoldLabel, e.IsPR); err != nil {
		log.WithError(err).Warnf("Failed to remove %q label from %s/%s#%d, it may not be present.", p.cfg.HoldLabel, org, repo, e.Number)
		return nil
	}
	log.Infof("Removed %q label from %s/%s#%d.", p.cfg.HoldLabel, org, repo, e.Number)
	return nil
}
