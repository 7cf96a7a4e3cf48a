package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeRule is a detection rule served by FakeKibana.
type FakeRule struct {
	ID        string `json:"id"`
	RuleID    string `json:"rule_id"`
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Immutable bool   `json:"immutable"`
	Severity  string `json:"severity,omitempty"`
	RiskScore int    `json:"risk_score,omitempty"`
}

// FakeExceptionList is an exception list served by FakeKibana.
type FakeExceptionList struct {
	ID            string `json:"id"`
	ListID        string `json:"list_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	NamespaceType string `json:"namespace_type"`
}

// FakeExceptionItem is an exception item served by FakeKibana.
type FakeExceptionItem struct {
	ID            string                   `json:"id"`
	ItemID        string                   `json:"item_id"`
	ListID        string                   `json:"list_id"`
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	Type          string                   `json:"type"`
	NamespaceType string                   `json:"namespace_type"`
	Entries       []map[string]interface{} `json:"entries"`
}

// BulkCall records one _bulk_action request.
type BulkCall struct {
	Action string
	IDs    []string
	DryRun bool
}

// FakeKibana is an in-process stand-in for the detection engine API.
// Rules are addressed by internal id "id-<rule_id>" unless set explicitly.
type FakeKibana struct {
	Server *httptest.Server

	// MaxPerPage caps the page size the fake honors, like a backend that
	// ignores large per_page values. Zero means no cap.
	MaxPerPage int
	// TotalOverride replaces the reported total when non-zero.
	TotalOverride int
	// IgnorePage serves the first page whatever page is requested.
	IgnorePage bool
	// FailStatus makes every request to a path suffix fail with the status,
	// e.g. {"/_bulk_action": 500}.
	FailStatus map[string]int
	// FailBulkAction fails only bulk calls for one action.
	FailBulkAction map[string]int
	// OmitSummary drops attributes.summary from bulk responses.
	OmitSummary bool

	mu        sync.Mutex
	rules     []*FakeRule
	lists     []*FakeExceptionList
	items     []*FakeExceptionItem
	bulkCalls []BulkCall
	findCalls int
	headers   http.Header
	query     url.Values
	paths     []string
}

// NewFakeKibana starts a fake backend serving the given rules.
func NewFakeKibana(t *testing.T, rules ...FakeRule) *FakeKibana {
	t.Helper()

	fk := &FakeKibana{}
	for i := range rules {
		r := rules[i]
		if r.ID == "" {
			r.ID = "id-" + r.RuleID
		}
		if r.Name == "" {
			r.Name = "Rule " + r.RuleID
		}
		fk.rules = append(fk.rules, &r)
	}

	fk.Server = httptest.NewServer(http.HandlerFunc(fk.handle))
	t.Cleanup(fk.Server.Close)
	return fk
}

// URL is the Kibana root URL of the fake.
func (fk *FakeKibana) URL() string {
	return fk.Server.URL
}

// BulkCalls returns every bulk action received so far.
func (fk *FakeKibana) BulkCalls() []BulkCall {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return append([]BulkCall(nil), fk.bulkCalls...)
}

// FindCalls returns how many find pages were requested.
func (fk *FakeKibana) FindCalls() int {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return fk.findCalls
}

// LastHeaders returns the headers of the most recent request.
func (fk *FakeKibana) LastHeaders() http.Header {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return fk.headers.Clone()
}

// LastQuery returns the query parameters of the most recent request.
func (fk *FakeKibana) LastQuery() url.Values {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	out := url.Values{}
	for k, v := range fk.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ExceptionItems returns the items stored in a list, in creation order.
func (fk *FakeKibana) ExceptionItems(listID string) []FakeExceptionItem {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	var out []FakeExceptionItem
	for _, it := range fk.items {
		if it.ListID == listID {
			out = append(out, *it)
		}
	}
	return out
}

// Paths returns the request paths received so far.
func (fk *FakeKibana) Paths() []string {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	return append([]string(nil), fk.paths...)
}

// Rule returns the current state of a rule by rule_id.
func (fk *FakeKibana) Rule(ruleID string) (FakeRule, bool) {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	for _, r := range fk.rules {
		if r.RuleID == ruleID {
			return *r, true
		}
	}
	return FakeRule{}, false
}

// EnabledRuleIDs returns the rule_ids currently enabled, sorted.
func (fk *FakeKibana) EnabledRuleIDs() []string {
	fk.mu.Lock()
	defer fk.mu.Unlock()
	var ids []string
	for _, r := range fk.rules {
		if r.Enabled {
			ids = append(ids, r.RuleID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (fk *FakeKibana) handle(w http.ResponseWriter, req *http.Request) {
	fk.mu.Lock()
	defer fk.mu.Unlock()

	fk.headers = req.Header.Clone()
	fk.query = req.URL.Query()
	fk.paths = append(fk.paths, req.URL.Path)

	// Strip "/api" or "/s/<space>/api"
	path := req.URL.Path
	if i := strings.Index(path, "/api/"); i >= 0 {
		path = path[i+len("/api"):]
	}

	for suffix, status := range fk.FailStatus {
		if strings.HasSuffix(path, suffix) {
			writeJSON(w, status, map[string]interface{}{"statusCode": status, "message": "injected failure"})
			return
		}
	}

	switch {
	case path == "/detection_engine/rules/_find" && req.Method == http.MethodGet:
		fk.find(w, req)
	case path == "/detection_engine/rules/_bulk_action" && req.Method == http.MethodPost:
		fk.bulk(w, req)
	case path == "/detection_engine/rules" && req.Method == http.MethodGet:
		fk.get(w, req)
	case path == "/detection_engine/rules" && req.Method == http.MethodPost:
		fk.create(w, req)
	case path == "/detection_engine/rules" && req.Method == http.MethodPut:
		fk.update(w, req)
	case path == "/exception_lists/_find" && req.Method == http.MethodGet:
		fk.findLists(w, req)
	case path == "/exception_lists" && req.Method == http.MethodGet:
		fk.getList(w, req)
	case path == "/exception_lists" && req.Method == http.MethodPost:
		fk.createList(w, req)
	case path == "/exception_lists/items/_find" && req.Method == http.MethodGet:
		fk.findItems(w, req)
	case path == "/exception_lists/items" && req.Method == http.MethodPost:
		fk.createItem(w, req)
	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"statusCode": 404, "message": "not found"})
	}
}

func (fk *FakeKibana) find(w http.ResponseWriter, req *http.Request) {
	fk.findCalls++

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(req.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if fk.MaxPerPage > 0 && perPage > fk.MaxPerPage {
		perPage = fk.MaxPerPage
	}

	start := (page - 1) * perPage
	if fk.IgnorePage {
		start = 0
	}
	data := []*FakeRule{}
	if start < len(fk.rules) {
		end := start + perPage
		if end > len(fk.rules) {
			end = len(fk.rules)
		}
		data = fk.rules[start:end]
	}

	total := len(fk.rules)
	if fk.TotalOverride != 0 {
		total = fk.TotalOverride
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":    page,
		"perPage": perPage,
		"total":   total,
		"data":    data,
	})
}

func (fk *FakeKibana) bulk(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Action string   `json:"action"`
		IDs    []string `json:"ids"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": err.Error()})
		return
	}
	dryRun := req.URL.Query().Get("dry_run") == "true"
	fk.bulkCalls = append(fk.bulkCalls, BulkCall{Action: body.Action, IDs: body.IDs, DryRun: dryRun})

	if status, ok := fk.FailBulkAction[body.Action]; ok {
		writeJSON(w, status, map[string]interface{}{"statusCode": status, "message": "bulk " + body.Action + " failed"})
		return
	}

	succeeded := 0
	for _, id := range body.IDs {
		for _, r := range fk.rules {
			if r.ID != id {
				continue
			}
			succeeded++
			if !dryRun {
				r.Enabled = body.Action == "enable"
			}
		}
	}

	resp := map[string]interface{}{"success": true, "rules_count": len(body.IDs)}
	if !fk.OmitSummary {
		resp["attributes"] = map[string]interface{}{
			"summary": map[string]int{
				"succeeded": succeeded,
				"failed":    len(body.IDs) - succeeded,
				"skipped":   0,
				"total":     len(body.IDs),
			},
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (fk *FakeKibana) get(w http.ResponseWriter, req *http.Request) {
	ruleID := req.URL.Query().Get("rule_id")
	for _, r := range fk.rules {
		if r.RuleID == ruleID {
			writeJSON(w, http.StatusOK, r)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"statusCode": 404,
		"message":    fmt.Sprintf("rule_id: %q not found", ruleID),
	})
}

func (fk *FakeKibana) create(w http.ResponseWriter, req *http.Request) {
	var r FakeRule
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil || r.RuleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "rule_id is required"})
		return
	}
	for _, existing := range fk.rules {
		if existing.RuleID == r.RuleID {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"statusCode": 409,
				"message":    fmt.Sprintf("rule_id: %q already exists", r.RuleID),
			})
			return
		}
	}
	r.ID = "id-" + r.RuleID
	fk.rules = append(fk.rules, &r)
	writeJSON(w, http.StatusOK, r)
}

func (fk *FakeKibana) update(w http.ResponseWriter, req *http.Request) {
	var r FakeRule
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": err.Error()})
		return
	}
	for i, existing := range fk.rules {
		if existing.RuleID == r.RuleID {
			r.ID = existing.ID
			fk.rules[i] = &r
			writeJSON(w, http.StatusOK, r)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"statusCode": 404, "message": "not found"})
}

// pageBounds returns the slice bounds of a requested page over n items.
func pageBounds(req *http.Request, n int) (page, perPage, start, end int) {
	page, _ = strconv.Atoi(req.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(req.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	start = (page - 1) * perPage
	if start > n {
		start = n
	}
	end = start + perPage
	if end > n {
		end = n
	}
	return page, perPage, start, end
}

func (fk *FakeKibana) findList(listID string) *FakeExceptionList {
	for _, l := range fk.lists {
		if l.ListID == listID {
			return l
		}
	}
	return nil
}

func (fk *FakeKibana) findLists(w http.ResponseWriter, req *http.Request) {
	page, perPage, start, end := pageBounds(req, len(fk.lists))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":     page,
		"per_page": perPage,
		"total":    len(fk.lists),
		"data":     fk.lists[start:end],
	})
}

func (fk *FakeKibana) getList(w http.ResponseWriter, req *http.Request) {
	listID := req.URL.Query().Get("list_id")
	if l := fk.findList(listID); l != nil {
		writeJSON(w, http.StatusOK, l)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"statusCode": 404,
		"message":    fmt.Sprintf("exception list list_id: %q does not exist", listID),
	})
}

func (fk *FakeKibana) createList(w http.ResponseWriter, req *http.Request) {
	var l FakeExceptionList
	if err := json.NewDecoder(req.Body).Decode(&l); err != nil || l.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "name is required"})
		return
	}
	if l.ListID == "" {
		l.ListID = fmt.Sprintf("list-%d", len(fk.lists)+1)
	}
	if fk.findList(l.ListID) != nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"statusCode": 409,
			"message":    fmt.Sprintf("exception list id: %q already exists", l.ListID),
		})
		return
	}
	l.ID = "id-" + l.ListID
	fk.lists = append(fk.lists, &l)
	writeJSON(w, http.StatusOK, l)
}

func (fk *FakeKibana) findItems(w http.ResponseWriter, req *http.Request) {
	listID := req.URL.Query().Get("list_id")
	if fk.findList(listID) == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"statusCode": 404,
			"message":    fmt.Sprintf("exception list list_id: %q does not exist", listID),
		})
		return
	}
	items := []*FakeExceptionItem{}
	for _, it := range fk.items {
		if it.ListID == listID {
			items = append(items, it)
		}
	}
	page, perPage, start, end := pageBounds(req, len(items))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":     page,
		"per_page": perPage,
		"total":    len(items),
		"data":     items[start:end],
	})
}

func (fk *FakeKibana) createItem(w http.ResponseWriter, req *http.Request) {
	var it FakeExceptionItem
	if err := json.NewDecoder(req.Body).Decode(&it); err != nil || it.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "name is required"})
		return
	}
	if fk.findList(it.ListID) == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"statusCode": 404,
			"message":    fmt.Sprintf("exception list list_id: %q does not exist", it.ListID),
		})
		return
	}
	if it.ItemID == "" {
		it.ItemID = fmt.Sprintf("item-%d", len(fk.items)+1)
	}
	it.ID = "id-" + it.ItemID
	fk.items = append(fk.items, &it)
	writeJSON(w, http.StatusOK, it)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
