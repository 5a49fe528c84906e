// Package remix rebuilds an instrumental bed from separated stems and mixes
// it with a composed vocal track.
//
// The vocal slot is fixed by configuration rather than detected, so the same
// index is excluded on every job. Additional slots can be skipped when a
// model emits stems that should not reach the bed.
package remix
