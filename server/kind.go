package server

// Kind identifies one of the three capability families a server exposes.
type Kind int

const (
	KindTool Kind = iota + 1
	KindResource
	KindPrompt
)

// String returns the lowercase kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindResource:
		return "resource"
	case KindPrompt:
		return "prompt"
	default:
		return "unknown"
	}
}
