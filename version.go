package parley

// Version is the library release version, reported by the CLI and the MCP
// server handshake.
var Version = "0.2.0"
