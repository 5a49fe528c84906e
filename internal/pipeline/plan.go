package pipeline

import (
	"context"

	"redub/internal/logging"
	"redub/internal/segment"
	"redub/internal/services"
)

// Plan runs the transcript half of the pipeline: probe, extract, recognize and
// translate. Nothing is synthesized and no output is written, so it is a
// cheap way to review what a dub would say before paying for speech.
func (p *Pipeline) Plan(ctx context.Context, input string) (Result, error) {
	job, _, err := p.startJob(ctx, input)
	if err != nil {
		return Result{}, err
	}
	defer p.releaseJob(job)

	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.deps.Logger)
	result := Result{JobID: job.ID}

	segs, err := p.transcribe(ctx, logger, job, input)
	if err != nil {
		return result, err
	}
	if len(segs) == 0 {
		result.Outcome = OutcomeNothingToDub
		return result, nil
	}
	var translated []segment.Segment
	if translated, err = p.translate(ctx, logger, segs); err != nil {
		return result, err
	}
	result.Segments = translated
	result.Language = p.opts.TargetLanguage
	return result, nil
}
