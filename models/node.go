// Package models contains data types for the hierarchy client.
package models

// NodeType classifies a node in the organisation tree.
// The service accepts other values; the constants below are the ones this
// deployment uses.
type NodeType string

const (
	NodeTypeCompany  NodeType = "company"
	NodeTypeDivision NodeType = "division"
	NodeTypeSite     NodeType = "site"
)

// Known reports whether t is one of the node types defined in this package.
func (t NodeType) Known() bool {
	switch t {
	case NodeTypeCompany, NodeTypeDivision, NodeTypeSite:
		return true
	}
	return false
}

// RootShortCode is the short code of the single root node of a hierarchy.
const RootShortCode = "root"

// HierarchyNode represents a node returned by the hierarchy service.
// The service answers with PascalCase keys (Id, ShortCode, ...); encoding/json
// matches them case-insensitively.
type HierarchyNode struct {
	ID              string   `json:"id,omitempty"`
	ShortCode       string   `json:"shortCode"`
	Name            string   `json:"name"`
	NodeType        NodeType `json:"nodeType"`
	Archived        bool     `json:"archived"`
	ParentShortCode string   `json:"parentShortCode,omitempty"`
	ParentID        string   `json:"parentId,omitempty"`
}

// IsRoot reports whether the node is the hierarchy root.
func (n *HierarchyNode) IsRoot() bool {
	return n.ShortCode == RootShortCode
}

// NodeCreate represents the data needed to upsert a node.
// ShortCode is carried in the URL for non-root nodes and in the body for the root.
type NodeCreate struct {
	ShortCode       string   `json:"shortCode,omitempty"`
	Name            string   `json:"name"`
	ParentShortCode string   `json:"parentShortCode,omitempty"`
	ParentID        string   `json:"parentId,omitempty"`
	Archived        bool     `json:"archived"`
	NodeType        NodeType `json:"nodeType"`
}
