package webhook

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/jenkins-x/go-scm/scm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/commands"
)

// Controller parses incoming webhooks and feeds them to the command pipeline.
type Controller struct {
	scmClient *scm.Client
	pipeline  *commands.Pipeline
	metrics   *Metrics

	path        string
	logWebhooks bool
}

// NewController creates and configures the controller.
func NewController(scmClient *scm.Client, pipeline *commands.Pipeline, path string) *Controller {
	o := &Controller{
		scmClient:   scmClient,
		pipeline:    pipeline,
		metrics:     NewMetrics(),
		path:        path,
		logWebhooks: os.Getenv("MERGEGATE_LOG_WEBHOOKS") == "true",
	}
	if o.logWebhooks {
		logrus.Info("enabling webhook logging")
	}
	return o
}

// Health returns HTTP 204 if the service is healthy.
func (o *Controller) Health(w http.ResponseWriter, r *http.Request) {
	logrus.Debug("Health check")
	w.WriteHeader(http.StatusNoContent)
}

// Ready returns either HTTP 204 if the service is ready to serve requests,
// otherwise HTTP 503.
func (o *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	logrus.Debug("Ready check")
	w.WriteHeader(http.StatusNoContent)
}

// Metrics returns the prometheus metrics.
func (o *Controller) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// DefaultHandler responds to requests without a specific handler.
func (o *Controller) DefaultHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == o.path || strings.HasPrefix(path, o.path+"/") {
		o.HandleWebhookRequests(w, r)
		return
	}
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "index.html" {
		return
	}
	http.Error(w, fmt.Sprintf("unknown path %s", path), 404)
}

// HandleWebhookRequests handles incoming webhook events.
func (o *Controller) HandleWebhookRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		// liveness probe etc
		logrus.WithField("method", r.Method).Debug("invalid http method so returning 200")
		return
	}
	logrus.Debug("about to parse webhook")
	webhook, err := o.scmClient.Webhooks.Parse(r, o.secretFn)
	if err != nil {
		logrus.Warnf("failed to parse webhook: %s", err.Error())
		o.responseHTTPError(w, http.StatusInternalServerError, fmt.Sprintf("500 Internal Server Error: Failed to parse webhook: %s", err.Error()))
		return
	}
	if webhook == nil {
		logrus.Error("no webhook was parsed")
		o.responseHTTPError(w, http.StatusInternalServerError, "500 Internal Server Error: No webhook could be parsed")
		return
	}

	entry := logrus.WithField("Webhook", webhook.Kind())
	l, output := o.ProcessWebHook(entry, webhook)
	if o.metrics != nil {
		o.metrics.ResponseCounter.With(map[string]string{
			"response_code": strconv.Itoa(http.StatusOK),
		}).Inc()
	}
	_, err = w.Write([]byte(output))
	if err != nil {
		l.Debugf("failed to write the webhook response: %v", err)
	}
}

// secretFn returns the HMAC secret used to validate webhook payloads. An
// empty secret disables validation.
func (o *Controller) secretFn(scm.Webhook) (string, error) {
	return os.Getenv("HMAC_TOKEN"), nil
}

// ProcessWebHook processes a parsed webhook. Handler errors never propagate:
// they are logged and the hook is acknowledged so the provider does not keep
// redelivering a payload we cannot act on.
func (o *Controller) ProcessWebHook(l *logrus.Entry, webhook scm.Webhook) (*logrus.Entry, string) {
	repository := webhook.Repository()
	l = l.WithFields(logrus.Fields{
		"Namespace": repository.Namespace,
		"Name":      repository.Name,
		"Webhook":   webhook.Kind(),
	})

	if o.metrics != nil && o.metrics.WebhookCounter != nil {
		o.metrics.WebhookCounter.With(map[string]string{
			"event_type": string(webhook.Kind()),
		}).Inc()
	}

	if o.logWebhooks {
		l.WithField("WebHook", webhook).Info("webhook")
	}

	if _, ok := webhook.(*scm.PingHook); ok {
		l.Info("received ping")
		return l, "pong from mergegate"
	}
	if hook, ok := webhook.(*scm.IssueCommentHook); ok {
		l.Info("invoking issue comment handler")
		if err := o.handleIssueCommentEvent(l, hook); err != nil {
			l.WithError(err).Error("failed to handle issue comment hook")
		}
		return l, "processed issue comment hook"
	}
	if hook, ok := webhook.(*scm.PullRequestCommentHook); ok {
		l.Info("invoking PR comment handler")
		if err := o.handlePullRequestCommentEvent(l, hook); err != nil {
			l.WithError(err).Error("failed to handle PR comment hook")
		}
		return l, "processed PR comment hook"
	}
	if hook, ok := webhook.(*scm.ReviewHook); ok {
		l.Info("invoking PR review handler")
		if err := o.handleReviewEvent(l, hook); err != nil {
			l.WithError(err).Error("failed to handle PR review hook")
		}
		return l, "processed PR review hook"
	}
	if hook, ok := webhook.(*scm.PullRequestHook); ok {
		l.Info("invoking PR handler")
		if err := o.handlePullRequestEvent(l, hook); err != nil {
			l.WithError(err).Error("failed to handle PR hook")
		}
		return l, "processed PR hook"
	}
	l.Debugf("unknown kind %s webhook %#v", webhook.Kind(), webhook)
	return l, fmt.Sprintf("ignored unknown hook %s", webhook.Kind())
}

func (o *Controller) responseHTTPError(w http.ResponseWriter, statusCode int, response string) {
	logrus.WithFields(logrus.Fields{
		"response":    response,
		"status-code": statusCode,
	}).Info(response)
	if o.metrics != nil {
		o.metrics.ResponseCounter.With(map[string]string{
			"response_code": strconv.Itoa(statusCode),
		}).Inc()
	}
	http.Error(w, response, statusCode)
}
