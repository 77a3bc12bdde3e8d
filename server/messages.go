package server

import (
	"github.com/tailored-agentic-units/ezra/core/protocol"
	"github.com/tailored-agentic-units/ezra/executor"
)

// OrchestrateRequest carries a typed query, recorded audio, or both. Audio
// is base64 encoded on the wire.
type OrchestrateRequest struct {
	Query     string `json:"query,omitempty"`
	AudioData []byte `json:"audio_data,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
}

type OrchestrateResponse struct {
	Plan      *protocol.Plan       `json:"plan"`
	Narration []executor.Narration `json:"narration,omitempty"`
}

type ExecuteToolRequest struct {
	Name string        `json:"name"`
	Args protocol.Args `json:"args,omitempty"`
}

type ExecuteToolResponse struct {
	Result protocol.ToolResult `json:"result"`
}

type AnswerRequest struct {
	Query     string `json:"query"`
	RawAnswer string `json:"raw_answer"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type ListToolsRequest struct{}

type ListToolsResponse struct {
	Tools    []protocol.Descriptor `json:"tools"`
	Manifest string                `json:"manifest"`
}
