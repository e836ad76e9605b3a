package exported

// Msg is an IBC protocol message. The type URL identifies the message kind
// inside a submitted envelope; ValidateBasic performs stateless checks only.
type Msg interface {
	Type() string
	ValidateBasic() error
}
