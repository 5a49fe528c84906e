// Package segment holds the timestamped utterance model shared by every stage
// of a dubbing job, plus ordering checks and SRT sidecar rendering.
package segment
