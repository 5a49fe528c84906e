// Package separation defines the stem set produced by source separation and
// the Separator contract that adapters implement.
package separation
