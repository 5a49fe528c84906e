package whisperx

// Config holds the recognizer settings mapped from the [recognition] section.
type Config struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is "silero" (default) or "pyannote"; pyannote needs HFToken.
	VADMethod string
	HFToken   string
	UVXBinary string
}

const (
	DefaultModel = "large-v3"
	UVXCommand   = "uvx"

	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"

	BatchSize         = "4"
	ChunkSize         = "15"
	BeamSize          = "5"
	SegmentResolution = "sentence"
	OutputFormat      = "json"

	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"

	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)
