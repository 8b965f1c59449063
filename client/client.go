// Package client provides a self-contained client for the organisation
// hierarchy service.
package client

import (
	"context"
	"net/url"

	"github.com/vaintrub/hierarchy-go/models"
)

// Client defines the interface for interacting with the hierarchy service.
type Client interface {
	// Auth
	AccessToken(ctx context.Context) (string, error)

	// Raw requests (any method, path resolved against the service base URL)
	Execute(ctx context.Context, method, path string, payload interface{}, query url.Values) (*Response, error)

	// Inserts (PUT /hierarchy/{type}, PUT /hierarchy/{type}/nodes/{shortCode})
	InsertRoot(ctx context.Context, name string) error
	InsertDivision(ctx context.Context, name, parentShortCode, parentID string) (shortCode string, err error)
	InsertSite(ctx context.Context, name, parentShortCode, parentID string) (shortCode string, err error)
	InsertNode(ctx context.Context, node models.NodeCreate) error

	// Queries (GET /hierarchy/{type}/nodes, GET /hierarchy/{type}/nodes/{id})
	GetRoot(ctx context.Context) (*models.HierarchyNode, error)
	GetNode(ctx context.Context, nodeID string) (*models.HierarchyNode, error)
	GetNodes(ctx context.Context, filter Filter) ([]models.HierarchyNode, error)
	GetDivisions(ctx context.Context) ([]models.HierarchyNode, error)
	GetSites(ctx context.Context) ([]models.HierarchyNode, error)
	GetAllNonRootNodes(ctx context.Context) ([]models.HierarchyNode, error)
	Tree(ctx context.Context) ([]*TreeNode, error)

	// Archives (PATCH /hierarchy/{type}/nodes/{id})
	Archive(ctx context.Context, nodeID string) error
	Unarchive(ctx context.Context, nodeID string) error
}

var _ Client = (*Adapter)(nil)
