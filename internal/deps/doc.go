// Package deps checks that the external programs redub launches (ffmpeg,
// ffprobe, uvx, piper) can be found on PATH.
package deps
