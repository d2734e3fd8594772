package commands

import (
	"fmt"

	"github.com/jenkins-x/go-scm/scm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/labels"
	"github.com/mergegate/mergegate/pkg/scmprovider"
)

// Config is the immutable configuration the pipeline is constructed with.
type Config struct {
	// BotName is the login of the automation identity. Events authored by
	// this login never trigger command handling.
	BotName string
	// MinApprovals is the number of distinct approvals required before a
	// pull request is auto-merged. Must be at least 1.
	MinApprovals int
	// HoldLabel is the label whose presence blocks approval.
	HoldLabel string
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.BotName == "" {
		return errors.New("bot name must not be empty")
	}
	if c.MinApprovals < 1 {
		return fmt.Errorf("minimum approvals must be at least 1, got %d", c.MinApprovals)
	}
	if c.HoldLabel == "" {
		return errors.New("hold label must not be empty")
	}
	return nil
}

// Pipeline drives a single comment event through the command workflow:
// self-loop guard, authorization, duplicate suppression, then dispatch to the
// approve/hold/unhold handlers. Each invocation is an independent unit of
// work; the only shared state is the read-only configuration.
type Pipeline struct {
	spc scmprovider.SCMClient
	log *logrus.Entry
	cfg Config
}

// NewPipeline creates a command pipeline. An empty BotName is resolved from
// the client's authenticated identity.
func NewPipeline(spc scmprovider.SCMClient, log *logrus.Entry, cfg Config) (*Pipeline, error) {
	if cfg.BotName == "" {
		botName, err := spc.BotName()
		if err != nil {
			return nil, errors.Wrap(err, "resolving the bot name")
		}
		cfg.BotName = botName
	}
	if cfg.HoldLabel == "" {
		cfg.HoldLabel = labels.Hold
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline configuration")
	}
	return &Pipeline{spc: spc, log: log, cfg: cfg}, nil
}

// HandleComment processes one comment-like event. Every failure it can
// recover from is converted into either a reply comment or a log entry; an
// error is returned only when even that reporting failed.
func (p *Pipeline) HandleComment(e scmprovider.GenericCommentEvent) error {
	if e.Action != scm.ActionCreate && e.Action != scm.ActionSubmitted {
		return nil
	}
	cmd := Parse(e.Body)
	if cmd == None {
		return nil
	}
	if !e.IsPR || e.Number == 0 {
		// Commands only drive pull requests.
		return nil
	}

	actor := e.Author.Login
	org := e.Repo.Namespace
	repo := e.Repo.Name
	log := p.log.WithFields(logrus.Fields{
		scmprovider.OrgLogField:  org,
		scmprovider.RepoLogField: repo,
		scmprovider.PrLogField:   e.Number,
		"author":                 actor,
		"command":                cmd.String(),
	})

	if scmprovider.NormLogin(actor) == scmprovider.NormLogin(p.cfg.BotName) {
		log.Debug("Ignoring own comment.")
		return nil
	}

	if !p.isPermitted(log, org, repo, actor) {
		log.Infof("Rejecting %s from %s: not permitted.", cmd, actor)
		return p.respond(&e, fmt.Sprintf("you do not have permission to use `%s` in this repository.", cmd))
	}

	if p.isDuplicate(log, &e) {
		log.Infof("Rejecting %s from %s: already used in this thread.", cmd, actor)
		return p.respond(&e, fmt.Sprintf("you have already used `%s` in this thread.", cmd))
	}

	switch cmd {
	case Approve:
		return p.handleApprove(log, &e)
	case Hold:
		return p.handleHold(log, &e)
	case Unhold:
		return p.handleUnhold(log, &e)
	case None:
	}
	return nil
}

// isPermitted reports whether the actor may issue commands: the bot itself,
// the repository owner, or a direct collaborator. A failed collaborator
// lookup counts as not permitted.
func (p *Pipeline) isPermitted(log *logrus.Entry, org, repo, actor string) bool {
	normed := scmprovider.NormLogin(actor)
	if normed == scmprovider.NormLogin(p.cfg.BotName) || normed == scmprovider.NormLogin(org) {
		return true
	}
	isCollaborator, err := p.spc.IsCollaborator(org, repo, actor)
	if err != nil {
		log.WithError(err).Error("Failed to check collaborator status, treating the actor as not permitted.")
		return false
	}
	return isCollaborator
}

// isDuplicate reports whether the same actor already posted the identical
// command text earlier in the thread. For comment-triggered commands the
// snapshot includes the trigger as its last element, which is skipped; a
// command arriving through a review body or PR description is not in the
// snapshot, so every comment is inspected. A failed comment listing counts as
// not duplicate so a transient read failure cannot block a command forever.
func (p *Pipeline) isDuplicate(log *logrus.Entry, e *scmprovider.GenericCommentEvent) bool {
	comments, err := p.spc.ListIssueComments(e.Repo.Namespace, e.Repo.Name, e.Number)
	if err != nil {
		log.WithError(err).Error("Failed to list comments, assuming the command is new.")
		return false
	}
	if e.InThread && len(comments) > 0 {
		comments = comments[:len(comments)-1]
	}
	for _, comment := range comments {
		if comment.Author.Login == e.Author.Login && comment.Body == e.Body {
			return true
		}
	}
	return false
}

// respond posts a reply comment addressed to the actor of the event.
func (p *Pipeline) respond(e *scmprovider.GenericCommentEvent, reply string) error {
	return p.spc.CreateComment(e.Repo.Namespace, e.Repo.Name, e.Number, e.IsPR,
		FormatResponseRaw(e.Body, e.Link, e.Author.Login, reply))
}
