// Package log provides structured protocol capture for the 802.15.4
// management sublayer.
//
// This package defines the Logger interface and Event types for capturing
// events at the layers a radio interface passes through: the NCP byte
// stream, MAC frames exchanged with the radio, and management requests and
// state transitions. It is separate from operational logging (slog) and
// gives a complete machine-readable trace for debugging scan and
// association problems.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field captures: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/wpan/wpan0.wlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Transport: raw NCP frame bytes (FrameEvent)
//   - Radio: MAC frames handed to or received from the radio (MACEvent)
//   - Management: requests (RequestEvent) and state changes (StateChangeEvent)
//
// Errors at any layer have a dedicated payload.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .wlog
// extension. The wpan-log tool views, filters and exports them.
package log
