package interaction

import "context"

// Repository port for persisting and querying interactions
type Repository interface {
	Save(ctx context.Context, in *Interaction) error
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*Interaction, error)
}
