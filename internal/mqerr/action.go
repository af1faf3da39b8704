package mqerr

type Action int8

const (
	Unknown Action = iota
	Encode
	Verify
	Parse
	Filter
)

func (a Action) String() string {
	switch a {
	case Encode:
		return "encode"
	case Verify:
		return "verify"
	case Parse:
		return "parse"
	case Filter:
		return "filter"
	default:
		return "unknown"
	}
}
