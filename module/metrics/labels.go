package metrics

const (
	LabelEndpoint = "endpoint"
	LabelResult   = "result"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
