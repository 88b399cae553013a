package roster

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Repository es el proveedor del padrón. Save con isNew=true crea,
// con isNew=false reemplaza el documento completo (last-write-wins).
type Repository interface {
	ListCats(ctx context.Context) ([]Cat, error)
	ListPoints(ctx context.Context) ([]FeedingPoint, error)
	ListZones(ctx context.Context) ([]Zone, error)
	ListMembers(ctx context.Context) ([]Member, error)

	GetCat(ctx context.Context, id string) (Cat, error)
	GetPoint(ctx context.Context, id string) (FeedingPoint, error)

	SaveCat(ctx context.Context, c Cat, isNew bool) error
	SavePoint(ctx context.Context, p FeedingPoint, isNew bool) error
	SaveZone(ctx context.Context, z Zone, isNew bool) error
	SaveMember(ctx context.Context, m Member, isNew bool) error
}
