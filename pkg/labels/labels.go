package labels

const (
	// Hold is the label used to prevent a pull request from being approved
	// and auto-merged until it is removed.
	Hold = "hold"
)
