package model

// Msg is the websocket request/response envelope.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// TimestepResult holds the global answer for one timestep.
type TimestepResult struct {
	MinCount int     `json:"min_count"`
	MaxCount int     `json:"max_count"`
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
}

// Timings are worst-case (maximum across workers) wall-clock seconds.
type Timings struct {
	Read    float64 `json:"read"`
	Compute float64 `json:"compute"`
	Total   float64 `json:"total"`
}

// Result is the reduced output of a full run, present only on the
// coordinating worker.
type Result struct {
	Steps   []TimestepResult `json:"steps"`
	Timings Timings          `json:"timings"`
}
