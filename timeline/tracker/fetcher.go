// Package tracker reads metrics timelines from the Heron tracker REST API.
package tracker

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/stringutils"
	"github.com/unionj-cloud/go-doudou/v2/toolkit/zlogger"
	"github.com/wubin1989/trackerql/timeline"
)

const (
	MetricsTimelinePath = "/topologies/metricstimeline"

	statusSuccess = "success"
)

// envelope is the tracker's common response wrapper
type envelope struct {
	Status        string               `json:"status"`
	Message       string               `json:"message"`
	ExecutionTime float64              `json:"executiontime"`
	Version       string               `json:"version"`
	Result        timeline.RawResponse `json:"result"`
}

// Config configures Fetcher
type Config struct {
	// BaseURL is the tracker root, e.g. http://localhost:8888
	BaseURL string
	Timeout time.Duration
	Verbose bool
}

var _ timeline.Fetcher = (*Fetcher)(nil)

// Fetcher is a timeline.Fetcher backed by the tracker over HTTP.
// A failure envelope is not an error: it comes back as an unusable response carrying the tracker's message.
type Fetcher struct {
	Cfg    Config
	Client *resty.Client
}

func NewFetcher(cfg Config) *Fetcher {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Fetcher{
		Cfg:    cfg,
		Client: client,
	}
}

func (receiver *Fetcher) params(backend timeline.Backend, component string, metrics []string, instances []string, start, end int64) url.Values {
	params := url.Values{}
	params.Set("cluster", backend.Cluster)
	params.Set("environ", backend.Environ)
	params.Set("topology", backend.Topology)
	if stringutils.IsNotEmpty(backend.Role) {
		params.Set("role", backend.Role)
	}
	params.Set("component", component)
	for _, metric := range metrics {
		params.Add("metricname", metric)
	}
	for _, instance := range instances {
		params.Add("instance", instance)
	}
	params.Set("starttime", strconv.FormatInt(start, 10))
	params.Set("endtime", strconv.FormatInt(end, 10))
	return params
}

// FetchTimeline implements timeline.Fetcher
func (receiver *Fetcher) FetchTimeline(ctx context.Context, backend timeline.Backend, component string, metrics []string, instances []string, start, end int64) (*timeline.RawResponse, error) {
	var ok, failed envelope
	resp, err := receiver.Client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(receiver.params(backend, component, metrics, instances, start, end)).
		SetResult(&ok).
		SetError(&failed).
		Get(MetricsTimelinePath)
	if err != nil {
		return nil, errors.Wrap(err, "error from tracker api")
	}
	if receiver.Cfg.Verbose {
		zlogger.Info().
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("took", resp.Time()).
			Msg("response from tracker")
	}
	if resp.IsError() {
		message := failed.Message
		if stringutils.IsEmpty(message) {
			message = resp.Status()
		}
		return &timeline.RawResponse{Message: message}, nil
	}
	if ok.Status != statusSuccess {
		message := ok.Message
		if stringutils.IsEmpty(message) {
			message = "tracker reported status " + strconv.Quote(ok.Status)
		}
		return &timeline.RawResponse{Message: message}, nil
	}
	result := ok.Result
	return &result, nil
}
