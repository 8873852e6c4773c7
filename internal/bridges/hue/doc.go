// Package hue talks to a Philips Hue bridge over its local REST API.
//
// Two devices live here. Group drives a light group: on recalls a
// configured scene, off is a plain power-off, and On queries live
// group state. Bridge mirrors the home's presence and darkness values
// into CLIP generic flag sensors so rules on the Hue bridge itself can
// depend on them.
//
// The API token is part of every request path, so request URLs are
// never logged.
package hue
