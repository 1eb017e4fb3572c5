package preview

// MessageType names a feed message.
type MessageType string

const (
	MsgGrid     MessageType = "grid"
	MsgAttempt  MessageType = "attempt"
	MsgCollapse MessageType = "collapse"
	MsgDone     MessageType = "done"
)

// Message is the envelope of every frame sent to viewers.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// GridPayload describes the lattice being solved. Viewers receive it on
// connect and whenever the grid changes.
type GridPayload struct {
	Radius      int        `json:"radius"`
	Layers      int        `json:"layers"`
	Underground int        `json:"underground"`
	Cells       []CellInfo `json:"cells"`
}

// CellInfo is the static description of one cell.
type CellInfo struct {
	ID     int    `json:"id"`
	Q      int    `json:"q"`
	R      int    `json:"r"`
	Layer  int    `json:"layer"`
	Status string `json:"status"`
	Edge   bool   `json:"edge,omitempty"`
	Entry  bool   `json:"entry,omitempty"`
	Path   bool   `json:"path,omitempty"`
}

// AttemptPayload marks the start of a solve attempt. Viewers clear the
// board when they receive it.
type AttemptPayload struct {
	Attempt int   `json:"attempt"`
	Seed    int64 `json:"seed"`
}

// CollapsePayload is one collapse event.
type CollapsePayload struct {
	Seq        int    `json:"seq"`
	Cell       int    `json:"cell"`
	Q          int    `json:"q"`
	R          int    `json:"r"`
	Layer      int    `json:"layer"`
	State      string `json:"state"`
	Tile       string `json:"tile,omitempty"`
	Rotation   int    `json:"rotation"`
	Inverted   bool   `json:"inverted,omitempty"`
	Candidates int    `json:"candidates"`
}

// DonePayload summarizes the kept result.
type DonePayload struct {
	RunID    string `json:"run_id"`
	Attempt  int    `json:"attempt"`
	Seed     int64  `json:"seed"`
	Assigned int    `json:"assigned"`
	Failed   int    `json:"failed"`
}
