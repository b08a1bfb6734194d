package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2 // case input violates the input contract
	DBConnError     = 3
	StoreError      = 4
	AnalysisError   = 5
	PartialSuccess  = 6 // result produced but one or more rules faulted
)
