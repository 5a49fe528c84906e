// Package demucs separates a mixed soundtrack into instrument stems with
// Demucs, launched through uvx.
//
// The separator reads <out>/<model>/<name>/<stem>.wav for each configured
// stem name and returns them as a separation.StemSet in configuration order,
// so slot indices used by the remix layout stay stable. Stems the model did
// not produce are reported as absent rather than failing the run.
package demucs
