package types

// InferRequest is the JSON body accepted by POST /infer.
type InferRequest struct {
	// Question is the text to run through the model.
	// example: The movie was surprisingly good.
	Question string `json:"question"`
	// IsBaseModel selects the base model instead of the fine-tuned one.
	// Only meaningful for tasks that serve two models; ignored otherwise.
	// example: true
	IsBaseModel bool `json:"is_base_model,omitempty"`
}

// InferResponse wraps the textual prediction returned by POST /infer.
type InferResponse struct {
	// Infer is the decoded model prediction.
	// example: 1
	Infer string `json:"infer"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelStatus summarizes one served model for /status.
type ModelStatus struct {
	// Name of the model as loaded (identifier or filesystem path).
	// example: stevhliu/my_awesome_billsum_model
	Name string `json:"name"`
	// Role is "base" or "finetuned".
	// example: base
	Role string `json:"role"`
	// State of the pipeline serving this model (e.g., ready).
	// example: ready
	State string `json:"state"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Task served by this process ("classify" or "summarize").
	// example: classify
	Task string `json:"task"`
	// Models loaded at start-up.
	Models []ModelStatus `json:"models"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix"`
}
