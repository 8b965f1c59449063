package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vaintrub/hierarchy-go/models"
)

// hierarchyPath returns /v1/organisation/{orgId}/hierarchy/{type}.
func (a *Adapter) hierarchyPath() string {
	return fmt.Sprintf("/v1/organisation/%s/hierarchy/%s",
		url.PathEscape(a.orgID), url.PathEscape(a.hierarchyType))
}

// nodesPath returns the node collection path, or the path of one node when
// key is not empty.
func (a *Adapter) nodesPath(key string) string {
	if key == "" {
		return a.hierarchyPath() + "/nodes"
	}
	return a.hierarchyPath() + "/nodes/" + url.PathEscape(key)
}

// InsertRoot upserts the root company node. An empty name defaults to
// "Top Company".
func (a *Adapter) InsertRoot(ctx context.Context, name string) error {
	if name == "" {
		name = defaultRootName
	}
	return a.InsertNode(ctx, models.NodeCreate{
		ShortCode: models.RootShortCode,
		Name:      name,
		NodeType:  models.NodeTypeCompany,
	})
}

// InsertDivision upserts a division under the given parent. The short code is
// derived from name with ShortCode and returned.
func (a *Adapter) InsertDivision(ctx context.Context, name, parentShortCode, parentID string) (string, error) {
	return a.insertChild(ctx, models.NodeTypeDivision, name, parentShortCode, parentID)
}

// InsertSite upserts a site under the given parent. The short code is derived
// from name with ShortCode and returned.
func (a *Adapter) InsertSite(ctx context.Context, name, parentShortCode, parentID string) (string, error) {
	return a.insertChild(ctx, models.NodeTypeSite, name, parentShortCode, parentID)
}

func (a *Adapter) insertChild(ctx context.Context, nodeType models.NodeType, name, parentShortCode, parentID string) (string, error) {
	shortCode := ShortCode(name)
	err := a.InsertNode(ctx, models.NodeCreate{
		ShortCode:       shortCode,
		Name:            name,
		ParentShortCode: parentShortCode,
		ParentID:        parentID,
		NodeType:        nodeType,
	})
	if err != nil {
		return "", err
	}
	return shortCode, nil
}

// InsertNode upserts a node keyed by its short code. The root is PUT to the
// hierarchy collection; any other node to /nodes/{shortCode} and must name
// its parent by both short code and id.
func (a *Adapter) InsertNode(ctx context.Context, node models.NodeCreate) error {
	if node.Name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if node.ShortCode == "" {
		return &ValidationError{Field: "shortCode", Message: "cannot be empty"}
	}
	if node.NodeType == "" {
		return &ValidationError{Field: "nodeType", Message: "cannot be empty"}
	}

	if node.ShortCode == models.RootShortCode {
		if node.NodeType != models.NodeTypeCompany {
			return &ValidationError{Field: "nodeType", Message: "root must be a company"}
		}
		node.ParentShortCode = ""
		node.ParentID = ""
		_, err := a.Execute(ctx, http.MethodPut, a.hierarchyPath(), node, nil)
		return err
	}

	if node.ParentShortCode == "" {
		return &ValidationError{Field: "parentShortCode", Message: "cannot be empty"}
	}
	if node.ParentID == "" {
		return &ValidationError{Field: "parentID", Message: "cannot be empty"}
	}

	path := a.nodesPath(node.ShortCode)
	node.ShortCode = "" // carried in the URL
	_, err := a.Execute(ctx, http.MethodPut, path, node, nil)
	return err
}

// GetRoot returns the root node, or nil if the service reports none.
func (a *Adapter) GetRoot(ctx context.Context) (*models.HierarchyNode, error) {
	resp, err := a.Execute(ctx, http.MethodGet, a.nodesPath(""), nil, filterQuery(Eq(FieldShortCode, models.RootShortCode)))
	if err != nil {
		return nil, err
	}
	return extractRootValue(resp.Body, a.logger)
}

// GetNode retrieves a single node by id.
func (a *Adapter) GetNode(ctx context.Context, nodeID string) (*models.HierarchyNode, error) {
	if nodeID == "" {
		return nil, &ValidationError{Field: "nodeID", Message: "cannot be empty"}
	}

	resp, err := a.Execute(ctx, http.MethodGet, a.nodesPath(nodeID), nil, nil)
	if err != nil {
		return nil, err
	}
	return parseNodeResponse(resp.Body)
}

// GetNodes lists the nodes matching filter. A zero Filter lists every node.
func (a *Adapter) GetNodes(ctx context.Context, filter Filter) ([]models.HierarchyNode, error) {
	var query url.Values
	if !filter.IsZero() {
		if err := filter.validate(); err != nil {
			return nil, err
		}
		query = filterQuery(filter)
	}

	resp, err := a.Execute(ctx, http.MethodGet, a.nodesPath(""), nil, query)
	if err != nil {
		return nil, err
	}
	return ExtractAllValues(resp.Body)
}

// GetDivisions lists every division node.
func (a *Adapter) GetDivisions(ctx context.Context) ([]models.HierarchyNode, error) {
	return a.GetNodes(ctx, Eq(FieldNodeType, string(models.NodeTypeDivision)))
}

// GetSites lists every site node.
func (a *Adapter) GetSites(ctx context.Context) ([]models.HierarchyNode, error) {
	return a.GetNodes(ctx, Eq(FieldNodeType, string(models.NodeTypeSite)))
}

// GetAllNonRootNodes lists every node except the root.
func (a *Adapter) GetAllNonRootNodes(ctx context.Context) ([]models.HierarchyNode, error) {
	return a.GetNodes(ctx, Ne(FieldShortCode, models.RootShortCode))
}

// Archive marks a node archived. Archiving an archived node is a no-op.
func (a *Adapter) Archive(ctx context.Context, nodeID string) error {
	return a.setArchived(ctx, nodeID, true)
}

// Unarchive clears a node's archived flag.
func (a *Adapter) Unarchive(ctx context.Context, nodeID string) error {
	return a.setArchived(ctx, nodeID, false)
}

func (a *Adapter) setArchived(ctx context.Context, nodeID string, archived bool) error {
	if nodeID == "" {
		return &ValidationError{Field: "nodeID", Message: "cannot be empty"}
	}
	_, err := a.Execute(ctx, http.MethodPatch, a.nodesPath(nodeID), models.SetArchived(archived), nil)
	return err
}

func filterQuery(f Filter) url.Values {
	return url.Values{filterParam: {f.String()}}
}

// parseNodeResponse accepts either a bare node object or a list envelope.
func parseNodeResponse(body []byte) (*models.HierarchyNode, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parse node: empty response body")
	}

	env, err := decodeEnvelope(trimmed)
	if err == nil && env.Value != nil {
		if len(*env.Value) == 0 {
			return nil, &APIError{StatusCode: http.StatusNotFound, Message: "node not found"}
		}
		trimmed = (*env.Value)[0]
	}

	var node models.HierarchyNode
	if err := json.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("parse node: %w", err)
	}
	if node.ID == "" {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "node not found"}
	}
	return &node, nil
}
