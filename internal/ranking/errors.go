package ranking

// Validation error codes. The code is a stable tag for metrics; callers only
// ever see Message.
const (
	CodeNoData           = "no_data"
	CodeInvalidData      = "invalid_data"
	CodeMissingKey       = "missing_key"
	CodeInvalidPriority  = "invalid_priority"
	CodeNegativePriority = "negative_priority"
	CodeInvalidRecords   = "invalid_records"
	CodeMissingRecordKey = "missing_record_key"
	CodeInvalidInteger   = "invalid_integer"
	CodeInvalidDay       = "invalid_day"
	CodeDayOutOfRange    = "day_out_of_range"
	CodePriceOutOfRange  = "price_out_of_range"
	CodeRankOutOfRange   = "rank_out_of_range"
)

// ValidationError is the only failure the ranking core produces.
// Message is returned verbatim to the caller.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

// ErrNoData reports a request that carried no payload at all.
func ErrNoData() *ValidationError {
	return invalid(CodeNoData, "data not received")
}

// ErrInvalidData reports a payload that is not JSON or not a JSON object.
func ErrInvalidData() *ValidationError {
	return invalid(CodeInvalidData, "invalid data")
}
