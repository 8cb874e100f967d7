package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const restPrefix = "/rest/v1/"

// SelectList reads rows from a table. filters are PostgREST query
// operators (e.g. id=in.(...)); order may be empty.
func (c *Client) SelectList(ctx context.Context, table, columns string, filters url.Values, order string, out any) error {
	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("select", columns)
	if order != "" {
		query.Set("order", order)
	}

	return c.do(ctx, http.MethodGet, restPrefix+table, query, nil, nil, out)
}

// SelectSingle reads exactly one row. A missing row surfaces as an
// *APIError that IsNotFound matches (406 / PGRST116), never as a decode
// failure.
func (c *Client) SelectSingle(ctx context.Context, table, columns string, filters url.Values, out any) error {
	query := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set("select", columns)

	headers := map[string]string{"Accept": "application/vnd.pgrst.object+json"}
	return c.do(ctx, http.MethodGet, restPrefix+table, query, nil, headers, out)
}

// Upsert inserts or merges a row, resolving conflicts on the given column.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, payload any) error {
	query := url.Values{}
	if onConflict != "" {
		query.Set("on_conflict", onConflict)
	}

	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	return c.do(ctx, http.MethodPost, restPrefix+table, query, payload, headers, nil)
}

// Insert appends a row.
func (c *Client) Insert(ctx context.Context, table string, payload any) error {
	headers := map[string]string{"Prefer": "return=minimal"}
	return c.do(ctx, http.MethodPost, restPrefix+table, nil, payload, headers, nil)
}

// Eq builds a single-column equality filter.
func Eq(column, value string) url.Values {
	return url.Values{column: {"eq." + value}}
}

// In builds a column membership filter.
func In(column string, values []string) url.Values {
	return url.Values{column: {"in.(" + strings.Join(values, ",") + ")"}}
}
