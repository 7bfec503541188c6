// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

package cards

// RunRequest is the optional body of a run request. ClicksMS holds click
// offsets in milliseconds from the start of the run.
type RunRequest struct {
	ClicksMS []int64 `json:"clicks_ms" binding:"omitempty,max=100,dive,gte=0"`
}

// Command is sent by websocket clients to steer a live run.
type Command struct {
	Type string `json:"type" binding:"oneof=click cancel"`
}

const (
	CommandClick  = "click"
	CommandCancel = "cancel"
)
