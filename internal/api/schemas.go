package api

import (
	"time"

	"reelforge/internal/app"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type SessionResponse struct {
	ID               string    `json:"id"`
	Stage            string    `json:"stage"`
	AwaitingApproval bool      `json:"awaiting_approval"`
	Theme            string    `json:"theme,omitempty"`
	Script           string    `json:"script,omitempty"`
	SceneCount       int       `json:"scene_count,omitempty"`
	FinalVideoPath   string    `json:"final_video_path,omitempty"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type StartSessionResponse struct {
	Session SessionResponse `json:"session"`
	Reply   string          `json:"reply"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type MessageResponse struct {
	Session SessionResponse `json:"session"`
	Reply   string          `json:"reply"`
}

func SessionToResponse(s *app.Session) SessionResponse {
	resp := SessionResponse{
		ID:               s.ID,
		Stage:            string(s.Stage),
		AwaitingApproval: s.AwaitingApproval,
		Script:           s.Script,
		SceneCount:       len(s.Scenes),
		FinalVideoPath:   s.FinalVideoPath,
		FailureReason:    s.FailureReason,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Theme != nil {
		resp.Theme = s.Theme.Theme
	}
	return resp
}
