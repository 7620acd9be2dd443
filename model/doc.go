// Package model defines stable boundary types for API layers.
//
// Resolution states are projected into these structs before they are encoded
// as JSON or YAML. Field names and error codes are part of the public API.
package model
