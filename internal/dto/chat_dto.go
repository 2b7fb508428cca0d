package dto

type SendChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type ChatReplyResponse struct {
	Reply   string           `json:"reply"`
	History []ChatMessageDTO `json:"history"`
}

// ChatStreamFrame is one websocket frame of a streamed reply.
type ChatStreamFrame struct {
	Type string `json:"type"` // "chunk" | "done" | "error"
	Data string `json:"data"`
}

const (
	ChatFrameChunk = "chunk"
	ChatFrameDone  = "done"
	ChatFrameError = "error"
)
