package models

// PatchOperation is a single JSON-Patch (RFC 6902) operation.
type PatchOperation struct {
	Value interface{} `json:"value"`
	Path  string      `json:"path"`
	Op    string      `json:"op"`
}

// ArchivedPath is the JSON-Patch path of a node's archived flag.
const ArchivedPath = "/Archived"

// SetArchived returns the patch document that sets a node's archived flag.
func SetArchived(archived bool) []PatchOperation {
	return []PatchOperation{
		{Value: archived, Path: ArchivedPath, Op: "replace"},
	}
}
