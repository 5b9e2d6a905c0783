package nix

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/zerr"
)

// available is one value of the object printed by nix-env --query --available --json.
type available struct {
	Name string          `json:"name"`
	Meta json.RawMessage `json:"meta"`
}

type meta struct {
	Priority    json.Number `json:"priority"`
	Description string      `json:"description"`
}

// Query lists the packages available on channel. attrs selects an attribute set,
// such as rPackages, whose members are not listed at the top level.
func (m *Manager) Query(ctx context.Context, channel, attrs string) ([]domain.AvailablePackage, error) {
	args := []string{"--query", "--file", channelFile(channel), "--available", "--meta", "--json"}
	if attrs != "" {
		args = append(args, "--attr", attrs)
	}

	out, err := m.output(ctx, domain.Command{Name: nixEnv, Args: args})
	if err != nil {
		return nil, err
	}

	pkgs, err := parseAvailable([]byte(out))
	if err != nil {
		return nil, zerr.With(err, "channel", channel)
	}
	return pkgs, nil
}

// parseAvailable decodes the package listing, sorted by attribute.
func parseAvailable(data []byte) ([]domain.AvailablePackage, error) {
	var raw map[string]available
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.Wrap(err, domain.ErrMalformedOutput.Error())
	}

	pkgs := make([]domain.AvailablePackage, 0, len(raw))
	for attr, pkg := range raw {
		p := domain.AvailablePackage{
			Attribute: attr,
			Name:      pkg.Name,
			Meta:      "{}",
		}

		if len(pkg.Meta) > 0 && string(pkg.Meta) != "null" {
			var md meta
			if err := json.Unmarshal(pkg.Meta, &md); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrMalformedOutput.Error()), "attr", attr)
			}
			p.Priority = priority(md.Priority)
			p.Description = md.Description
			p.Meta = string(pkg.Meta)
		}

		pkgs = append(pkgs, p)
	}

	slices.SortFunc(pkgs, func(a, b domain.AvailablePackage) int {
		return strings.Compare(a.Attribute, b.Attribute)
	})
	return pkgs, nil
}

// priority truncates the meta priority to an integer. Missing values are 0.
func priority(n json.Number) int {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}
