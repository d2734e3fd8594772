package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mergegate/mergegate/pkg/commands"
	"github.com/mergegate/mergegate/pkg/labels"
	"github.com/mergegate/mergegate/pkg/logrusutil"
	"github.com/mergegate/mergegate/pkg/util"
	"github.com/mergegate/mergegate/pkg/webhook"
)

const (
	// HealthPath is the URL path for the HTTP endpoint that returns health status.
	HealthPath = "/health"
	// ReadyPath URL path for the HTTP endpoint that returns ready status.
	ReadyPath = "/ready"
)

type options struct {
	bindAddress string
	path        string
	port        int
	jsonLog     bool

	botName      string
	minApprovals int
	holdLabel    string
}

func (o *options) Validate() error {
	if o.minApprovals < 1 {
		return fmt.Errorf("--min-approvals must be at least 1, got %d", o.minApprovals)
	}
	return nil
}

func gatherOptions(fs *flag.FlagSet, args ...string) options {
	var o options
	fs.BoolVar(&o.jsonLog, "json", true, "Enable JSON logging")
	fs.IntVar(&o.port, "port", 8080, "The TCP port to listen on.")
	fs.StringVar(&o.bindAddress, "bind", "",
		"The interface address to bind to (by default, will listen on all interfaces/addresses).")
	fs.StringVar(&o.path, "path", "/hook",
		"The path to listen on for webhooks.")
	fs.StringVar(&o.botName, "bot-name", "", "The name of the bot user to run as. Defaults to $GIT_USER if not specified.")
	fs.IntVar(&o.minApprovals, "min-approvals", 1, "The number of distinct approvals required before a pull request is auto-merged.")
	fs.StringVar(&o.holdLabel, "hold-label", labels.Hold, "The label used to put a pull request on hold.")

	err := fs.Parse(args)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid options")
	}

	return o
}

// Entrypoint for the command
func main() {
	o := gatherOptions(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:]...)
	if err := o.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid options")
	}

	if o.jsonLog {
		logrus.SetFormatter(logrusutil.CreateDefaultFormatter())
	}

	botName := o.botName
	if botName == "" {
		botName = util.GetBotName()
	}

	spc, scmClient, err := util.GetSCMClient()
	if err != nil {
		logrus.WithError(err).Fatal("failed to create SCM client")
	}
	spc.SetBotName(botName)
	logrus.Infof("Running as %s against a %s provider", botName, spc.ProviderType())

	pipeline, err := commands.NewPipeline(spc, logrus.NewEntry(logrus.StandardLogger()), commands.Config{
		BotName:      botName,
		MinApprovals: o.minApprovals,
		HoldLabel:    o.holdLabel,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up command pipeline")
	}

	controller := webhook.NewController(scmClient, pipeline, o.path)

	mux := http.NewServeMux()
	mux.Handle(HealthPath, http.HandlerFunc(controller.Health))
	mux.Handle(ReadyPath, http.HandlerFunc(controller.Ready))

	mux.Handle("/", http.HandlerFunc(controller.DefaultHandler))
	mux.Handle(o.path, http.HandlerFunc(controller.HandleWebhookRequests))

	// lets serve metrics
	metricsHandler := http.HandlerFunc(controller.Metrics)
	go serveMetrics(metricsHandler)

	logrus.Infof("Mergegate is now listening on path %s and port %d for webhooks", o.path, o.port)
	err = http.ListenAndServe(o.bindAddress+":"+strconv.Itoa(o.port), mux)
	logrus.WithError(err).Errorf("failed to serve HTTP")
}

func serveMetrics(metricsHandler http.Handler) {
	logrus.Info("Mergegate is serving prometheus metrics on port 2112")
	err := http.ListenAndServe(":2112", metricsHandler)
	logrus.WithError(err).Errorf("failed to serve HTTP")
}
