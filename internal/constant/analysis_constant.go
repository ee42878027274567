package constant

const (
	// Dataset lifecycle, owned by the ingestion side. The engine only ever
	// queries datasets that reached Ready.
	DatasetStatusPending    = "pending"
	DatasetStatusProcessing = "processing"
	DatasetStatusReady      = "ready"
	DatasetStatusError      = "error"

	// QueryLog terminal states
	QueryStatusSuccess = "success"
	QueryStatusError   = "error"

	DefaultSessionTitle = "Unnamed session"

	// Context window bound per query; mirrors the product default
	DefaultContextWindowEntries = 10
)
