// Package adminapi wires ChannelManager and the persistence stores behind
// the HTTP admin surface: channel CRUD, manual message injection, message
// and log inspection, and a live metrics WebSocket feed. Handlers are thin
// -- they validate the request, translate it into a call against
// manager.ChannelManager or a core/store interface, and render the
// result. Every route is bearer-token authenticated except /api/health and
// /api/ws/metrics, which accepts the token as a query parameter since
// browsers cannot set a custom header on the WebSocket handshake.
package adminapi
