// Package seed applies a YAML description of a hierarchy (root, divisions and
// their sites) to the hierarchy service.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/vaintrub/hierarchy-go/client"
	"github.com/vaintrub/hierarchy-go/models"
)

// File is the on-disk seed format.
type File struct {
	Root      string     `yaml:"root"`
	Divisions []Division `yaml:"divisions"`
}

// Division is a division and the names of its sites. ShortCode is optional
// and derived from Name when empty.
type Division struct {
	Name      string   `yaml:"name"`
	ShortCode string   `yaml:"shortCode,omitempty"`
	Sites     []string `yaml:"sites,omitempty"`
}

// Result counts the nodes upserted by Apply.
type Result struct {
	RootID    string
	Divisions int
	Sites     int
}

// Load reads and validates a seed file from fsys.
func Load(fsys afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := map[string]string{models.RootShortCode: "root"}
	for i, d := range f.Divisions {
		if d.Name == "" {
			return &client.ValidationError{Field: fmt.Sprintf("divisions[%d].name", i), Message: "cannot be empty"}
		}
		code := d.shortCode()
		if code == "" {
			return &client.ValidationError{Field: fmt.Sprintf("divisions[%d].shortCode", i), Message: "cannot be derived from name"}
		}
		if prev, ok := seen[code]; ok {
			return &client.ValidationError{Field: fmt.Sprintf("divisions[%d]", i),
				Message: fmt.Sprintf("short code %q already used by %s", code, prev)}
		}
		seen[code] = d.Name

		for j, site := range d.Sites {
			field := fmt.Sprintf("divisions[%d].sites[%d]", i, j)
			siteCode := client.ShortCode(site)
			if siteCode == "" {
				return &client.ValidationError{Field: field, Message: "cannot be empty"}
			}
			if prev, ok := seen[siteCode]; ok {
				return &client.ValidationError{Field: field,
					Message: fmt.Sprintf("short code %q already used by %s", siteCode, prev)}
			}
			seen[siteCode] = site
		}
	}
	return nil
}

func (d Division) shortCode() string {
	if d.ShortCode != "" {
		return d.ShortCode
	}
	return client.ShortCode(d.Name)
}

// Apply upserts the root, then every division under it, then every site
// under its division. Parent ids are read back from the service after each
// level, so Apply is safe to run repeatedly.
func Apply(ctx context.Context, c client.Client, f *File, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := c.InsertRoot(ctx, f.Root); err != nil {
		return nil, fmt.Errorf("inserting root: %w", err)
	}
	root, err := c.GetRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading root: %w", err)
	}
	if root == nil || root.ID == "" {
		return nil, fmt.Errorf("root was not returned after insert")
	}
	logger.Info("seeded root", "id", root.ID, "name", root.Name)

	res := &Result{RootID: root.ID}
	for _, d := range f.Divisions {
		err := c.InsertNode(ctx, models.NodeCreate{
			ShortCode:       d.shortCode(),
			Name:            d.Name,
			ParentShortCode: root.ShortCode,
			ParentID:        root.ID,
			NodeType:        models.NodeTypeDivision,
		})
		if err != nil {
			return res, fmt.Errorf("inserting division %q: %w", d.Name, err)
		}
		res.Divisions++
		logger.Debug("seeded division", "shortCode", d.shortCode())
	}

	if !f.hasSites() {
		return res, nil
	}

	divisions, err := c.GetDivisions(ctx)
	if err != nil {
		return res, fmt.Errorf("reading divisions: %w", err)
	}
	ids := make(map[string]string, len(divisions))
	for _, d := range divisions {
		ids[d.ShortCode] = d.ID
	}

	for _, d := range f.Divisions {
		parentID, ok := ids[d.shortCode()]
		if !ok {
			return res, fmt.Errorf("division %q not found after insert", d.shortCode())
		}
		for _, site := range d.Sites {
			if _, err := c.InsertSite(ctx, site, d.shortCode(), parentID); err != nil {
				return res, fmt.Errorf("inserting site %q: %w", site, err)
			}
			res.Sites++
			logger.Debug("seeded site", "name", site, "division", d.shortCode())
		}
	}
	return res, nil
}

func (f *File) hasSites() bool {
	for _, d := range f.Divisions {
		if len(d.Sites) > 0 {
			return true
		}
	}
	return false
}
