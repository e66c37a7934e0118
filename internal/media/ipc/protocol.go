// Package ipc implements a media control session served on a Unix socket.
// Hotkey daemons and the mediakeys CLI dispatch control events through it
// and read back the published playback state.
package ipc

import (
	"github.com/jfmyers9/mediakeys/internal/media"
)

// Protocol version sent in the handshake
const protocolVersion = 1

// Commands carried in frame payloads.
const (
	CmdDispatch = "DISPATCH"
	CmdGetState = "GET_STATE"
)

// Reply event types.
const (
	EvtReady = "READY"
	EvtOK    = "OK"
	EvtError = "ERROR"
)

// Error codes returned in ERROR replies.
const (
	CodeBadRequest     = 4000
	CodeUnknownCommand = 4001
	CodeNoHandler      = 4002
)

// State is the playback state published by the session
type State struct {
	Name     string               `json:"name"`
	Platform string               `json:"platform"`
	Attached bool                 `json:"attached"`
	Status   media.PlaybackStatus `json:"status"`
	Metadata media.Metadata       `json:"metadata"`
}

type handshake struct {
	Version  int    `json:"v"`
	ClientID string `json:"client_id"`
}

type request struct {
	Cmd   string      `json:"cmd"`
	Args  requestArgs `json:"args"`
	Nonce string      `json:"nonce"`
}

type requestArgs struct {
	Event string `json:"event,omitempty"`
}

type response struct {
	Cmd   string       `json:"cmd"`
	Evt   string       `json:"evt"`
	Nonce string       `json:"nonce,omitempty"`
	Data  responseData `json:"data"`
}

type responseData struct {
	State   *State `json:"state,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
