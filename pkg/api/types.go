package api

// APIResponse is the standard JSON envelope every handler in this
// package replies with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the diagnostics/query HTTP
// server.
type ServerConfig struct {
	Port int
	Bind string
}

// InsertRequest is the JSON body accepted by POST /points.
type InsertRequest struct {
	Point   []float64 `json:"point"`
	UID     string    `json:"uid"`
	ExtProp []byte    `json:"ext_prop,omitempty"`
}

// QueryRequest is the JSON body accepted by the /query/* endpoints.
type QueryRequest struct {
	Point     []float64 `json:"point"`
	K         int       `json:"k,omitempty"`
	Radius    float64   `json:"radius,omitempty"`
	BeamWidth int       `json:"beam_width,omitempty"`
}

// NeighbourResult is the JSON shape a matched point is reported in.
type NeighbourResult struct {
	UID      string  `json:"uid"`
	Distance float64 `json:"distance"`
	Level    int     `json:"level"`
}
