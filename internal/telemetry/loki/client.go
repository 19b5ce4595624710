// Package loki pushes moderation events to the Grafana Loki push API.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Job is the job label attached to every stream.
const Job = "juribank"

const pushPath = "/loki/api/v1/push"

// ErrNoBaseURL is returned by NewClient when no Loki URL is configured.
var ErrNoBaseURL = errors.New("loki: base URL is empty")

// label values outside this set are replaced with '_'
var unsafeLabelChars = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Labels map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Entry is one log line with its stream labels. Job is added to every entry.
type Entry struct {
	Time   time.Time
	Line   string
	Labels map[string]string
}

// Client pushes entries to one Loki instance.
type Client struct {
	url    string
	tenant string
	http   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTenant sets the X-Scope-OrgID header sent with every push.
func WithTenant(id string) Option {
	return func(c *Client) { c.tenant = strings.TrimSpace(id) }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client for baseURL (e.g. http://localhost:3100).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	c := &Client{
		url:  strings.TrimSuffix(baseURL, "/") + pushPath,
		http: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// eventFields is the part of a moderation event used for labels and timestamp.
// Session ids and IP hashes stay in the line; as labels they would explode stream cardinality.
type eventFields struct {
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventEntry turns an encoded moderation event into an Entry labelled by event type and source.
// Input that does not decode is kept as the line with the current time and no extra labels.
func EventEntry(raw []byte) Entry {
	e := Entry{Time: time.Now().UTC(), Line: string(raw), Labels: map[string]string{}}
	var f eventFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return e
	}
	if f.EventType != "" {
		e.Labels["event_type"] = f.EventType
	}
	if f.Source != "" {
		e.Labels["source"] = f.Source
	}
	if !f.CreatedAt.IsZero() {
		e.Time = f.CreatedAt
	}
	return e
}

// PushEvent pushes one encoded moderation event.
func (c *Client) PushEvent(ctx context.Context, raw []byte) error {
	return c.Push(ctx, EventEntry(raw))
}

// Push sends entries in one request, grouped into a stream per label set.
// It fails if the request fails or Loki answers with a non-2xx status.
func (c *Client) Push(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	payload, err := json.Marshal(buildRequest(entries))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tenant != "" {
		req.Header.Set("X-Scope-OrgID", c.tenant)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}

func buildRequest(entries []Entry) pushRequest {
	var (
		req   pushRequest
		index = map[string]int{}
	)
	for _, e := range entries {
		labels := sanitizeLabels(e.Labels)
		key := labelKey(labels)
		i, ok := index[key]
		if !ok {
			i = len(req.Streams)
			index[key] = i
			req.Streams = append(req.Streams, stream{Labels: labels})
		}
		req.Streams[i].Values = append(req.Streams[i].Values,
			[2]string{strconv.FormatInt(e.Time.UnixNano(), 10), e.Line})
	}
	return req
}

func sanitizeLabels(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		if v = unsafeLabelChars.ReplaceAllString(strings.TrimSpace(v), "_"); v != "" {
			out[k] = v
		}
	}
	out["job"] = Job
	return out
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}
