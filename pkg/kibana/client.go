package kibana

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/dac/pkg/errors"
	"github.com/arthur-debert/dac/pkg/logging"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	// DefaultPageSize is the largest page the find endpoint accepts.
	DefaultPageSize = 1000
	// DefaultTimeout bounds every single request.
	DefaultTimeout = 30 * time.Second

	rulesPath = "/detection_engine/rules"
	findPath  = rulesPath + "/_find"
	bulkPath  = rulesPath + "/_bulk_action"
)

// Options configures a Client.
type Options struct {
	// KibanaURL is the root URL of the Kibana instance.
	KibanaURL string
	// Space is the Kibana space; "default" or empty uses the root API.
	Space    string
	APIKey   string
	Timeout  time.Duration
	PageSize int
}

// Client talks to the detection engine API of one Kibana space.
type Client struct {
	rc       *resty.Client
	pageSize int
	logger   zerolog.Logger
}

// APIURL returns the API base for a Kibana URL and space.
func APIURL(kibanaURL, space string) string {
	base := strings.TrimRight(kibanaURL, "/")
	if space == "" || space == "default" {
		return base + "/api"
	}
	return fmt.Sprintf("%s/s/%s/api", base, space)
}

// New creates a client. Call Close when done.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	rc := resty.New().
		SetBaseURL(APIURL(opts.KibanaURL, opts.Space)).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Authorization", "ApiKey "+opts.APIKey).
		SetHeader("kbn-xsrf", "true").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		rc:       rc,
		pageSize: pageSize,
		logger:   logging.GetLogger("kibana").With().Str("base_url", rc.BaseURL).Logger(),
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.rc.GetClient().CloseIdleConnections()
}

// FindRules fetches one page of rules and the backend-reported total.
func (c *Client) FindRules(ctx context.Context, page, perPage int) ([]Rule, int, error) {
	var out findResponse
	err := c.do(ctx, resty.MethodGet, findPath, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"page":     strconv.Itoa(page),
			"per_page": strconv.Itoa(perPage),
		})
	}, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}

// GetAllRules walks every page of the find endpoint. It stops once the
// accumulated count reaches the reported total and fails instead of looping
// when the backend stops making progress, repeats a rule or serves more
// rules than it reports.
func (c *Client) GetAllRules(ctx context.Context) ([]Rule, error) {
	var all []Rule
	seen := map[string]bool{}
	maxPages := 1

	for page := 1; ; page++ {
		rules, total, err := c.FindRules(ctx, page, c.pageSize)
		if err != nil {
			return nil, err
		}
		if page == 1 {
			// The backend may serve smaller pages than requested, so the
			// bound follows the first page it actually returned, plus one
			// page of slack for rules created while paging.
			served := len(rules)
			if served == 0 {
				served = c.pageSize
			}
			maxPages = (total+served-1)/served + 1
			all = make([]Rule, 0, total)
		}
		for _, r := range rules {
			if seen[r.ID] {
				return nil, errors.Newf(errors.ErrBackend,
					"pagination returned duplicate rules: %s (%s) repeated on page %d", r.RuleID, r.ID, page).
					WithDetail("page", page).
					WithDetail("id", r.ID)
			}
			seen[r.ID] = true
		}
		all = append(all, rules...)

		c.logger.Trace().
			Int("page", page).
			Int("received", len(rules)).
			Int("accumulated", len(all)).
			Int("total", total).
			Msg("Fetched rules page")

		if len(all) > total {
			return nil, errors.Newf(errors.ErrBackend,
				"pagination inconsistent: %d rules fetched but backend reports %d", len(all), total).
				WithDetail("page", page)
		}
		if len(all) == total {
			break
		}
		if len(rules) == 0 {
			return nil, errors.Newf(errors.ErrBackend,
				"pagination stalled: page %d was empty with %d of %d rules fetched", page, len(all), total).
				WithDetail("page", page)
		}
		if page >= maxPages {
			return nil, errors.Newf(errors.ErrBackend,
				"pagination exceeded %d pages with %d of %d rules fetched", maxPages, len(all), total).
				WithDetail("page", page)
		}
	}

	c.logger.Debug().Int("count", len(all)).Msg("Fetched all rules")
	return all, nil
}

// GetRule fetches a single rule by its rule_id.
func (c *Client) GetRule(ctx context.Context, ruleID string) (RuleDocument, error) {
	var out RuleDocument
	err := c.do(ctx, resty.MethodGet, rulesPath, func(r *resty.Request) {
		r.SetQueryParam("rule_id", ruleID)
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRule creates a detection rule.
func (c *Client) CreateRule(ctx context.Context, rule RuleDocument) (RuleDocument, error) {
	var out RuleDocument
	if err := c.do(ctx, resty.MethodPost, rulesPath, func(r *resty.Request) {
		r.SetBody(rule)
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRule replaces an existing detection rule, matched by rule_id or id.
func (c *Client) UpdateRule(ctx context.Context, rule RuleDocument) (RuleDocument, error) {
	var out RuleDocument
	if err := c.do(ctx, resty.MethodPut, rulesPath, func(r *resty.Request) {
		r.SetBody(rule)
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkAction applies one action to every rule in ids with a single call.
// An empty ids list makes no call.
func (c *Client) BulkAction(ctx context.Context, action BulkActionType, ids []string, dryRun bool) (*BulkResult, error) {
	result := &BulkResult{Action: action, Requested: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	var out bulkResponse
	err := c.do(ctx, resty.MethodPost, bulkPath, func(r *resty.Request) {
		r.SetQueryParam("dry_run", strconv.FormatBool(dryRun))
		r.SetBody(bulkRequest{Action: action, IDs: ids})
	}, &out)
	if err != nil {
		return nil, err
	}

	result.Succeeded = len(ids)
	if out.Attributes != nil && out.Attributes.Summary != nil {
		s := out.Attributes.Summary
		result.Failed = s.Failed
		result.Skipped = s.Skipped
		if s.Succeeded != nil {
			result.Succeeded = *s.Succeeded
			result.Summarized = true
		}
	}

	c.logger.Info().
		Str("action", string(action)).
		Int("requested", result.Requested).
		Int("succeeded", result.Succeeded).
		Bool("dry_run", dryRun).
		Msg("Bulk action completed")

	return result, nil
}

// do performs a request and decodes a successful JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, build func(*resty.Request), out interface{}) error {
	req := c.rc.R().SetContext(ctx)
	if build != nil {
		build(req)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("Sending request")

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackend, "%s %s failed", method, path).
			WithDetail("method", method).
			WithDetail("path", path)
	}

	if !resp.IsSuccess() {
		return errors.Newf(errors.ErrBackend, "%s %s returned %d: %s",
			method, path, resp.StatusCode(), truncate(strings.TrimSpace(resp.String()), 512)).
			WithDetail("method", method).
			WithDetail("path", path).
			WithDetail("status", resp.StatusCode())
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, errors.ErrBackend, "cannot decode %s %s response", method, path).
			WithDetail("method", method).
			WithDetail("path", path)
	}
	return nil
}

// StatusCode returns the HTTP status carried by a backend error, or 0.
func StatusCode(err error) int {
	details := errors.GetErrorDetails(err)
	if details == nil {
		return 0
	}
	status, _ := details["status"].(int)
	return status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
