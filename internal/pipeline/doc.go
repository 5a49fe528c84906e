// Package pipeline drives one dubbing job from source container to dubbed
// container.
//
// Stages run strictly in order: probe, extract, recognize, translate,
// synthesize, compose, then optionally separate and remix, then mux. Each
// stage runs with a stage-scoped context and logger, and a failure aborts the
// job with the stage's failure marker. Synthesis may fan out across a bounded
// worker group; clips are still handed to the compositor in segment order.
//
// Intermediate audio lives in a locked scratch job directory that is removed
// when the run ends unless KeepScratch is set. Plan stops after translation
// and never writes output.
package pipeline
