package kibana

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const (
	// NamespaceSingle scopes exception lists to the current space.
	NamespaceSingle = "single"
	// DefaultExceptionPageSize is the page size used when none is given.
	DefaultExceptionPageSize = 100

	exceptionListsPath     = "/exception_lists"
	findExceptionListsPath = exceptionListsPath + "/_find"
	exceptionItemsPath     = exceptionListsPath + "/items"
	findExceptionItemsPath = exceptionItemsPath + "/_find"
)

// ExceptionList is a named container of exception items that rules
// reference.
type ExceptionList struct {
	ID            string   `json:"id,omitempty"`
	ListID        string   `json:"list_id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Type          string   `json:"type"`
	NamespaceType string   `json:"namespace_type,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// ExceptionEntry is one condition of an exception item.
type ExceptionEntry struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Type     string      `json:"type"`
	Value    interface{} `json:"value,omitempty"`
}

// ExceptionItem suppresses alerts matching all of its entries.
type ExceptionItem struct {
	ID            string           `json:"id,omitempty"`
	ItemID        string           `json:"item_id,omitempty"`
	ListID        string           `json:"list_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Type          string           `json:"type"`
	NamespaceType string           `json:"namespace_type,omitempty"`
	Entries       []ExceptionEntry `json:"entries"`
	Tags          []string         `json:"tags,omitempty"`
}

type exceptionListsResponse struct {
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
	Data    []ExceptionList `json:"data"`
}

type exceptionItemsResponse struct {
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
	Data    []ExceptionItem `json:"data"`
}

func pageParams(page, perPage int) map[string]string {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultExceptionPageSize
	}
	return map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
	}
}

// FindExceptionLists fetches one page of exception lists and the reported
// total.
func (c *Client) FindExceptionLists(ctx context.Context, page, perPage int) ([]ExceptionList, int, error) {
	var out exceptionListsResponse
	if err := c.do(ctx, resty.MethodGet, findExceptionListsPath, func(r *resty.Request) {
		r.SetQueryParams(pageParams(page, perPage))
	}, &out); err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}

// GetExceptionList fetches a space-scoped exception list by its list_id.
func (c *Client) GetExceptionList(ctx context.Context, listID string) (*ExceptionList, error) {
	var out ExceptionList
	if err := c.do(ctx, resty.MethodGet, exceptionListsPath, func(r *resty.Request) {
		r.SetQueryParam("list_id", listID)
		r.SetQueryParam("namespace_type", NamespaceSingle)
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateExceptionList creates an exception list. An empty namespace type
// defaults to single.
func (c *Client) CreateExceptionList(ctx context.Context, list ExceptionList) (*ExceptionList, error) {
	if list.NamespaceType == "" {
		list.NamespaceType = NamespaceSingle
	}
	var out ExceptionList
	if err := c.do(ctx, resty.MethodPost, exceptionListsPath, func(r *resty.Request) {
		r.SetBody(list)
	}, &out); err != nil {
		return nil, err
	}

	c.logger.Info().Str("list_id", out.ListID).Msg("Exception list created")
	return &out, nil
}

// FindExceptionItems fetches one page of the items of a space-scoped list.
func (c *Client) FindExceptionItems(ctx context.Context, listID string, page, perPage int) ([]ExceptionItem, int, error) {
	var out exceptionItemsResponse
	if err := c.do(ctx, resty.MethodGet, findExceptionItemsPath, func(r *resty.Request) {
		r.SetQueryParams(pageParams(page, perPage))
		r.SetQueryParam("list_id", listID)
		r.SetQueryParam("namespace_type", NamespaceSingle)
	}, &out); err != nil {
		return nil, 0, err
	}
	return out.Data, out.Total, nil
}

// CreateExceptionItem adds an item to the list named by item.ListID.
func (c *Client) CreateExceptionItem(ctx context.Context, item ExceptionItem) (*ExceptionItem, error) {
	if item.NamespaceType == "" {
		item.NamespaceType = NamespaceSingle
	}
	var out ExceptionItem
	if err := c.do(ctx, resty.MethodPost, exceptionItemsPath, func(r *resty.Request) {
		r.SetBody(item)
	}, &out); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("list_id", out.ListID).
		Str("item_id", out.ItemID).
		Msg("Exception item created")
	return &out, nil
}
