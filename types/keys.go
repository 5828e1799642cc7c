package types

const (
	// ModuleName defines the error namespace for the checkout client
	ModuleName = "checkout"
)
