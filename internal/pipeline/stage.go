package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"redub/internal/logging"
	"redub/internal/services"
)

// Stage names used in logs and error messages.
const (
	StageProbe      = "probe"
	StageExtract    = "extract"
	StageRecognize  = "recognize"
	StageTranslate  = "translate"
	StageSynthesize = "synthesize"
	StageCompose    = "compose"
	StageSeparate   = "separate"
	StageRemix      = "remix"
	StageMux        = "mux"
	StageSidecars   = "sidecars"
)

// runStage executes fn with stage-scoped context and logging. logger should
// already carry the job fields. Errors that do
// not already carry a failure marker are wrapped with fallback.
func runStage(ctx context.Context, logger *slog.Logger, name string, fallback error, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logger.With(logging.String(logging.FieldStage, name))
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()

	err := fn(stageCtx, stageLogger)
	if err != nil {
		if !hasMarker(err) {
			err = services.Wrap(fallback, name, "", "", err)
		}
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func hasMarker(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return services.Kind(err) != "unknown"
}
