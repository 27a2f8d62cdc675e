// Package formats reads and writes client ADT terrain tiles.
//
// An ADT file is a flat sequence of chunks, each a reversed four-character
// tag, a little-endian uint32 payload size and the payload. The reader keeps
// the raw source values; converting them to map tiles is done by maptile.
package formats
