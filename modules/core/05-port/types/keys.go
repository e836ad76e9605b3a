package types

const (
	// SubModuleName defines the IBC port name
	SubModuleName = "port"
)
