package simplepg

// QueryInput is the input for the execute_query tool.
type QueryInput struct {
	Query    string `json:"query"`
	ReadOnly bool   `json:"readOnly"`
}

// QueryResult is the success envelope of the execute_query tool. Failures are
// returned as *ExecutionError instead.
type QueryResult struct {
	Success       bool                     `json:"success"`
	RowCount      int64                    `json:"rowCount"`
	Rows          []map[string]interface{} `json:"rows"`
	Command       string                   `json:"command"`
	ExecutionTime int64                    `json:"executionTime"` // milliseconds
}
