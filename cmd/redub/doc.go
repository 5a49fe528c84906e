// Package main hosts the redub CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the recognition,
// translation, synthesis and separation adapters the config selects, and
// hands them to the pipeline driver. Exit status follows services.ExitCode:
// 2 when the source had nothing to dub, 3 for usage and configuration
// problems, 4 for composition invariant violations and 1 for everything else.
package main
