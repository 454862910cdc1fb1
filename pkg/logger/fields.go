package logger

const (
	FieldPath    = "path"
	FieldPID     = "pid"
	FieldProcess = "process"
	FieldVar     = "var"
	FieldStage   = "stage"
	FieldStatus  = "status"
	FieldError   = "error"

	FieldSegmentsBefore = "segments_before"
	FieldSegmentsAfter  = "segments_after"
)
