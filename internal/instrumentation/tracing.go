package instrumentation

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the outlookmail client.
const TracerName = "github.com/teemow/outlookmail"

// RecordOutcome marks the span according to the operation result. A nil
// error records success; otherwise the span is flagged with the error
// message.
func RecordOutcome(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
