// Package server implements the MCP (Model Context Protocol) server for the
// image crop tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Geometry:
//   - image_load: Load image, get metadata and a new editor record
//   - image_aspect_ratio: Reduce a size to its aspect ratio
//   - image_default_crop: Centered default crop
//   - image_reconcile_crop: Fit a crop to a target ratio
//
// Engines:
//   - image_apply: Crop and resize, optionally sharpen
//   - image_sharpen: Unsharp mask
//   - image_crop_preview: Crop outline with thirds guides
//   - image_compare: Difference and sharpness of two images
//
// Export records:
//   - image_export: Editor record to V1/V2 export record
//   - image_import: V1/V2 export record to editor record
//
// # Image Caching
//
// Decoded files are cached by path for the lifetime of the process and shared
// by image_load and the engines. Inline sources are decoded per call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000, message "Tool execution failed" and the Go error string as data.
// Protocol errors use the standard codes (-32700, -32601, -32602).
//
// # Usage
//
//	srv, err := server.New(cfg, server.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
