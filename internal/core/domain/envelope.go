package domain

import (
	"encoding/json"
	"fmt"
)

// Envelope is the uniform payload returned for every query_employee_data
// call. It has two JSON shapes:
//
//	success: {"success":true,"data":[...],"row_count":N,"executed_query":Q}
//	failure: {"success":false,"error":E,"executed_query":Q}
//
// ExecutedQuery is always present and always equals the trimmed original
// input, never a rewritten form. On success, data and row_count are always
// present (data is [] for zero rows); on failure both are absent.
type Envelope struct {
	Success       bool
	Data          []map[string]any
	RowCount      int
	Err           string
	ExecutedQuery string
}

// Succeeded builds a success envelope. A nil row slice is normalized to an
// empty one so zero-row results serialize as "data": [].
func Succeeded(rows []map[string]any, executedQuery string) Envelope {
	if rows == nil {
		rows = []map[string]any{}
	}
	return Envelope{
		Success:       true,
		Data:          rows,
		RowCount:      len(rows),
		ExecutedQuery: executedQuery,
	}
}

// Failed builds a failure envelope carrying the reason text verbatim.
func Failed(reason, executedQuery string) Envelope {
	return Envelope{
		Success:       false,
		Err:           reason,
		ExecutedQuery: executedQuery,
	}
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(struct {
			Success       bool             `json:"success"`
			Data          []map[string]any `json:"data"`
			RowCount      int              `json:"row_count"`
			ExecutedQuery string           `json:"executed_query"`
		}{true, e.Data, e.RowCount, e.ExecutedQuery})
	}
	return json.Marshal(struct {
		Success       bool   `json:"success"`
		Error         string `json:"error"`
		ExecutedQuery string `json:"executed_query"`
	}{false, e.Err, e.ExecutedQuery})
}

// UnknownTool is the protocol-level payload for an unrecognized tool name.
// It deliberately has a different shape from Envelope: a bare error object
// with no success flag or executed_query.
type UnknownTool struct {
	Name string
}

func (u UnknownTool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error string `json:"error"`
	}{fmt.Sprintf("Unknown tool: %s", u.Name)})
}
