package model

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

type BuildRequest struct {
	SessionID string  `json:"session_id" binding:"required"`
	Budget    float64 `json:"budget" binding:"required"`
	BuildType string  `json:"build_type"`
}

type CreateSessionRequest struct {
	BuildType string `json:"build_type"`
}

type SwitchModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}
