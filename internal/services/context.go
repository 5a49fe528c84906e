package services

import "context"

type contextKey string

const (
	jobIDKey        contextKey = "job_id"
	stageKey        contextKey = "stage"
	segmentIndexKey contextKey = "segment_index"
)

// WithJobID annotates context with the dubbing job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSegmentIndex annotates context with the segment currently being processed.
func WithSegmentIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, segmentIndexKey, index)
}

// SegmentIndexFromContext returns the segment index if present.
func SegmentIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(segmentIndexKey).(int)
	return v, ok
}
