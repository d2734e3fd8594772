// Package commands implements the approval workflow behind the /approve,
// /hold and /unhold chatops commands: permission checking, duplicate command
// suppression, hold label state and the auto-merge decision.
package commands

// Command is a chatops command extracted from a comment body.
type Command int

// The closed set of commands. Anything else parses to None and is ignored.
const (
	None Command = iota
	Approve
	Hold
	Unhold
)

// String returns the literal comment text for a command.
func (c Command) String() string {
	switch c {
	case Approve:
		return "/approve"
	case Hold:
		return "/hold"
	case Unhold:
		return "/unhold"
	}
	return ""
}

// Parse derives a command from a comment body. The match is exact: the whole
// body must equal the command literal, with no normalization or trimming.
func Parse(body string) Command {
	switch body {
	case "/approve":
		return Approve
	case "/hold":
		return Hold
	case "/unhold":
		return Unhold
	}
	return None
}
