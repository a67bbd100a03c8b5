package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/knora"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
)

// ListCache memoizes list nodes and complete lists by IRI.
type ListCache interface {
	GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error)
	GetList(ctx context.Context, listIRI string) (*models.List, error)
}

type listCache struct {
	client knora.API
	nodes  *memo[*models.ListNode]
	lists  *memo[*models.List]
}

// NewListCache creates a ListCache backed by the Knora API.
func NewListCache(client knora.API, logger *zap.Logger) ListCache {
	logger = logger.Named("list_cache")
	return &listCache{
		client: client,
		nodes:  newMemo[*models.ListNode]("list_node", logger),
		lists:  newMemo[*models.List]("list", logger),
	}
}

var _ ListCache = (*listCache)(nil)

func (c *listCache) GetListNode(ctx context.Context, nodeIRI string) (*models.ListNode, error) {
	return c.nodes.get(ctx, nodeIRI, func(ctx context.Context) (*models.ListNode, error) {
		return c.client.GetListNode(ctx, nodeIRI)
	})
}

func (c *listCache) GetList(ctx context.Context, listIRI string) (*models.List, error) {
	return c.lists.get(ctx, listIRI, func(ctx context.Context) (*models.List, error) {
		return c.client.GetList(ctx, listIRI)
	})
}
