// Package ffmpeg wraps the ffmpeg binary for the two container operations a
// dubbing job needs: pulling the audio out of the source video, and writing a
// new container with the original video stream and replacement audio.
//
// Commands run through an injectable CommandRunner so tests can assert on the
// exact argument list without ffmpeg installed.
package ffmpeg
