package model

// ChannelPhase is the realtime channel state machine:
// Disconnected -> Connecting -> Connected -> Disconnected.
type ChannelPhase string

const (
	ChannelDisconnected ChannelPhase = "disconnected"
	ChannelConnecting   ChannelPhase = "connecting"
	ChannelConnected    ChannelPhase = "connected"
)
