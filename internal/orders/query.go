package orders

import (
	"context"

	"github.com/angelmondragon/shipdesk-backend/pkg/pagination"
	"github.com/angelmondragon/shipdesk-backend/pkg/visibility"
)

// List returns one page of the orders visible to the actor.
func (s *Service) List(ctx context.Context, actor visibility.Actor, params pagination.Params) (*OrderList, error) {
	scope, err := visibility.ForActor(actor)
	if err != nil {
		return nil, err
	}
	return s.repo.ListScoped(ctx, scope, params)
}

// Detail loads a single order visible to the actor.
func (s *Service) Detail(ctx context.Context, actor visibility.Actor, orderID int64) (*OrderDetail, error) {
	scope, err := visibility.ForActor(actor)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindScoped(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}
	detail := DetailFromModel(*order)
	return &detail, nil
}
