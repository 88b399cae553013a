package blob

import (
	"context"
	"errors"
)

var ErrEmptyObject = errors.New("blob: empty object")

// Store persiste binarios (fotos) y devuelve una referencia estable
// que reemplaza al contenido inline.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (ref string, err error)
}
