// Package preflight provides readiness checks for the external services,
// programs and directories a dubbing run depends on.
//
// These checks run in two contexts:
//   - `redub check` prints every result as a table.
//   - `redub dub` runs CheckSystemDeps and RunAll before creating a job and
//     refuses to start when a required check fails, so a missing key does not
//     surface only after recognition has run for an hour.
//
// Credential checks are gated by the selected backends; unused services are
// skipped.
package preflight
