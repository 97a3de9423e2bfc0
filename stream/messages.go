package stream

// Message types sent by the server.
const (
	TypeConfig  = "config"
	TypePainted = "painted"
	TypeFrame   = "frame"
	TypeError   = "error"
)

// Message types accepted from clients.
const (
	TypePaint = "paint"
	TypeSpeed = "speed"
)

// SpeciesInfo describes one species for client legends.
type SpeciesInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ConfigMessage is sent once when a client connects.
type ConfigMessage struct {
	Type        string        `json:"type"`
	Width       int           `json:"w"`
	Height      int           `json:"h"`
	FrameWidth  int           `json:"frame_w"`
	FrameHeight int           `json:"frame_h"`
	Downsample  int           `json:"downsample"`
	Species     []SpeciesInfo `json:"species"`
	FoodColor   string        `json:"food_color"`
	Brush       int           `json:"brush"`
	FoodValue   float64       `json:"food_value"`
	FoodMax     float64       `json:"food_max"`
	Seed        int64         `json:"seed"`
}

// FrameMessage carries one downsampled view of the field. Trail and Food
// hold one byte per frame cell, row-major, and are base64 in JSON.
type FrameMessage struct {
	Type     string  `json:"type"`
	Step     uint64  `json:"step"`
	SimTime  float64 `json:"sim_time"`
	Agents   int     `json:"agents"`
	Width    int     `json:"w"`
	Height   int     `json:"h"`
	Trail    []byte  `json:"trail"`
	Food     []byte  `json:"food"`
	Coverage float64 `json:"coverage"`
}

// ClientMessage is any message received from a client. Fields not used by
// Type are ignored. Brush and Value fall back to the configured defaults.
type ClientMessage struct {
	Type  string   `json:"type"`
	X     int      `json:"x"`
	Y     int      `json:"y"`
	Brush *int     `json:"brush,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Steps int      `json:"steps,omitempty"`
}

// PaintedMessage acknowledges a paint request.
type PaintedMessage struct {
	Type  string `json:"type"`
	Cells int    `json:"cells"`
}

// SpeedMessage acknowledges a speed change with the steps now run per tick.
type SpeedMessage struct {
	Type  string `json:"type"`
	Steps int    `json:"steps"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
