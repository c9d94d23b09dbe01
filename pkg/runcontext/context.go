package runcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyOperation    KeyContext = "operation"
	keyTemplateName KeyContext = "template_name"
	keyRunStartTime KeyContext = "run_start_time"
)

// RunMetadata holds metadata for one pipeline run
type RunMetadata struct {
	RunID        uuid.UUID
	Operation    string
	TemplateName string
	StartTime    time.Time
}

// RunBegin derives a run context carrying its metadata and a deadline.
// A zero timeout keeps the parent deadline.
func RunBegin(parentCtx context.Context, operation, templateName string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := parentCtx, context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	}

	ctx = context.WithValue(ctx, keyRunID, uuid.New())
	ctx = context.WithValue(ctx, keyOperation, operation)
	ctx = context.WithValue(ctx, keyTemplateName, templateName)
	ctx = context.WithValue(ctx, keyRunStartTime, time.Now())

	return ctx, cancel
}

// GetRunID extracts run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetOperation extracts the operation name from context
func GetOperation(ctx context.Context) string {
	op, _ := ctx.Value(keyOperation).(string)
	return op
}

// GetTemplateName extracts template name from context
func GetTemplateName(ctx context.Context) string {
	name, _ := ctx.Value(keyTemplateName).(string)
	return name
}

// GetRunStartTime extracts run start time from context
func GetRunStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyRunStartTime).(time.Time)
	return startTime, ok
}

// Elapsed returns the time since the run began, zero outside a run
func Elapsed(ctx context.Context) time.Duration {
	start, ok := GetRunStartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(start)
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	startTime, _ := GetRunStartTime(ctx)

	return &RunMetadata{
		RunID:        runID,
		Operation:    GetOperation(ctx),
		TemplateName: GetTemplateName(ctx),
		StartTime:    startTime,
	}
}

// LogFields returns the run metadata as zap fields
func LogFields(ctx context.Context) []zap.Field {
	md := GetRunMetadata(ctx)
	fields := []zap.Field{
		zap.String("run_id", md.RunID.String()),
		zap.String("operation", md.Operation),
	}
	if md.TemplateName != "" {
		fields = append(fields, zap.String("template", md.TemplateName))
	}
	return fields
}
