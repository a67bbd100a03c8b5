package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dasch-swiss/mls-app-ng/pkg/apperrors"
	"github.com/dasch-swiss/mls-app-ng/pkg/models"
)

const (
	genderList = "http://rdfh.ch/lists/0807/gender"
	maleNode   = "http://rdfh.ch/lists/0807/gender-male"
)

func TestListCache_NodeFetchedOnce(t *testing.T) {
	client := &mockKnora{
		nodes: map[string]*models.ListNode{maleNode: {IRI: maleNode, Label: "männlich"}},
		gate:  make(chan struct{}),
	}
	cache := NewListCache(client, zap.NewNop())

	var wg sync.WaitGroup
	labels := make([]string, 5)
	for i := range labels {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			node, err := cache.GetListNode(context.Background(), maleNode)
			if err == nil {
				labels[i] = node.Label
			}
		}(i)
	}
	require.Eventually(t, func() bool { return client.nodeCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(client.gate)
	wg.Wait()

	for _, label := range labels {
		assert.Equal(t, "männlich", label)
	}
	assert.Equal(t, int32(1), client.nodeCalls.Load())
}

func TestListCache_FailureIsNotMemoized(t *testing.T) {
	client := &mockKnora{nodes: map[string]*models.ListNode{}}
	cache := NewListCache(client, zap.NewNop())

	_, err := cache.GetListNode(context.Background(), maleNode)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	client.nodes[maleNode] = &models.ListNode{IRI: maleNode, Label: "männlich"}
	node, err := cache.GetListNode(context.Background(), maleNode)
	require.NoError(t, err)
	assert.Equal(t, "männlich", node.Label)
	assert.Equal(t, int32(2), client.nodeCalls.Load())
}

func TestListCache_ListsAndNodesAreSeparate(t *testing.T) {
	client := &mockKnora{
		nodes: map[string]*models.ListNode{genderList: {IRI: genderList, Label: "Gender", IsRootNode: true}},
		lists: map[string]*models.List{genderList: {
			Info:     models.ListInfo{ID: genderList, Labels: []models.StringLiteral{{Value: "Geschlecht", Language: "de"}}},
			Children: []models.ListChildNode{{ID: maleNode}},
		}},
	}
	cache := NewListCache(client, zap.NewNop())

	node, err := cache.GetListNode(context.Background(), genderList)
	require.NoError(t, err)
	assert.True(t, node.IsRootNode)

	list, err := cache.GetList(context.Background(), genderList)
	require.NoError(t, err)
	assert.Equal(t, "Geschlecht", models.Label(list.Info.Labels, "de"))

	_, err = cache.GetList(context.Background(), genderList)
	require.NoError(t, err)
	assert.Equal(t, int32(1), client.nodeCalls.Load())
	assert.Equal(t, int32(1), client.listCalls.Load())
}
