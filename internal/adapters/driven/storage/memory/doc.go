// Package memory provides in-memory stores for tests and throwaway sessions.
//
// Nothing written here survives the process. Downloaded artefacts still need
// real files for text extraction, so the cache store keeps them in a
// temporary directory.
package memory
