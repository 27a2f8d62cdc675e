package maptile

import "errors"

// Transcoding errors. Any of them aborts the whole tile.
var (
	ErrCellCount         = errors.New("wrong number of cells")
	ErrShortHeightStream = errors.New("height stream shorter than 145 samples")
	ErrLayerCount        = errors.New("declared layer count exceeds layer records")
	ErrTextureIndex      = errors.New("texture index out of range")
	ErrAlphaSectionSize  = errors.New("alpha section size is not header plus whole planes")
	ErrAlphaTruncated    = errors.New("alpha section shorter than declared")
	ErrModelIndex        = errors.New("model index out of range")
	ErrShortModelName    = errors.New("model name too short for extension rewrite")
)
