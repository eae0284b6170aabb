package server

import "github.com/vidlink-cli/vidlink/video"

type envelope struct {
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    string       `json:"error,omitempty"`
	Reason   video.Reason `json:"reason,omitempty"`
	Attempts []attempt    `json:"attempts,omitempty"`
}

type attempt struct {
	Provider string       `json:"provider"`
	Reason   video.Reason `json:"reason"`
	Error    string       `json:"error"`
}

func success(data any) *envelope {
	return &envelope{Success: true, Data: data}
}

func failure(msg string) *envelope {
	return &envelope{Error: msg}
}
