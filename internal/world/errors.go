package world

import "errors"

var (
	// ErrInvalidSize возвращается, если размер мира не кратен ChunkSize
	ErrInvalidSize = errors.New("размер мира должен быть положительным и кратным размеру чанка")
	// ErrNotAllocated возвращается при обращении к невыделенному чанку
	ErrNotAllocated = errors.New("чанк не выделен")
)
