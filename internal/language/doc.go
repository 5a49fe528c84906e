// Package language converts between the BCP-47 tags used in configuration,
// the two-letter codes recognizers and translators accept, and the three-letter
// codes written into container metadata.
package language
