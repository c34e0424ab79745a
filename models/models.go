package models

// ClassifyResult is the outcome for one submitted image, in submission order.
// Exactly one of Answer or Error is set.
type ClassifyResult struct {
	Index  int    `json:"index"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ClassifyResponse is the reply to a classification batch.
type ClassifyResponse struct {
	BatchID string           `json:"batch_id"`
	Source  string           `json:"source"`
	Results []ClassifyResult `json:"results"`
}

// TableRequest carries the raw answers accumulated by the caller.
type TableRequest struct {
	Answers []string `json:"answers"`
}

// TableResponse is the projected table plus how many answers were discarded
// as unparseable.
type TableResponse struct {
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
	Dropped int        `json:"dropped"`
}
