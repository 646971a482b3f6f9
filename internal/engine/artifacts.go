package engine

import "encoding/base64"

// Artifact is a structured evidence record derived from an execution.
type Artifact struct {
	Type string `json:"artifact_type"`
	URI  string `json:"uri,omitempty"`
	Hash string `json:"hash,omitempty"`
	Data string `json:"data,omitempty"`
}

// TranscriptArtifacts derives the execution_log evidence for one
// outcome: the transcript itself plus its base64 digest.
func TranscriptArtifacts(transcript string) []Artifact {
	return []Artifact{
		{
			Type: "execution_log",
			Hash: base64.StdEncoding.EncodeToString([]byte(transcript)),
			Data: transcript,
		},
	}
}
