package model

// Row is one CSV data line keyed by cleaned header name. Values are trimmed.
type Row map[string]string
