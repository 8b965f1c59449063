package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vaintrub/hierarchy-go/models"
)

// nodeTypeFlag restricts --type to division, site or all.
type nodeTypeFlag string

const nodeTypeAll = "all"

var _ pflag.Value = (*nodeTypeFlag)(nil)

func (f *nodeTypeFlag) String() string { return string(*f) }

func (f *nodeTypeFlag) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case string(models.NodeTypeDivision), string(models.NodeTypeSite), nodeTypeAll:
		*f = nodeTypeFlag(v)
		return nil
	}
	return fmt.Errorf("must be one of division, site, all")
}

func (f *nodeTypeFlag) Type() string { return "type" }

// addParentFlags registers the parent linkage flags shared by division and
// site inserts.
func addParentFlags(fs *pflag.FlagSet, shortCode, id *string, defaultShortCode string) {
	fs.StringVar(shortCode, "parent-short-code", defaultShortCode, "Short code of the parent node")
	fs.StringVar(id, "parent-id", "", "Id of the parent node (looked up by short code when omitted)")
}
