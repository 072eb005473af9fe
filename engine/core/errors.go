package core

import (
	"errors"
)

var (
	ErrBadMagic           = errors.New("not an anima content file")
	ErrUnsupportedVersion = errors.New("unsupported content format version")
	ErrUnknownReader      = errors.New("no type reader registered")
	ErrReaderVersion      = errors.New("type reader version mismatch")
	ErrBadTypeID          = errors.New("type id out of range")
	ErrBadSharedIndex     = errors.New("shared resource index out of range")
	ErrSharedPrimary      = errors.New("primary object cannot be a shared resource")
	ErrTypeMismatch       = errors.New("unexpected object type")
	ErrVarintOverflow     = errors.New("7-bit encoded int overflows 32 bits")
	ErrNilArgument        = errors.New("argument cannot be nil")
	ErrDuplicateReader    = errors.New("type reader already registered")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrManagerClosed      = errors.New("content manager already closed")
	ErrUnknown            = errors.New("unknown")
)
