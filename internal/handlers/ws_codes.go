// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room and list handlers. These
// give clients a more specific closure reason than the standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided auth token was invalid or expired.
	InvalidLobbyIDError   = 3003 // Target lobby in the WS URL does not exist or is malformed.
)
