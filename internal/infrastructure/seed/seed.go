// Package seed loads the role and user seed data the registry and user
// directory start from. The default document is embedded; deployments can
// point ROLES_SEED_FILE at their own.
package seed

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"
	"institute-admin/internal/domain"
)

//go:embed roles.yaml
var defaultSeed []byte

type roleSeed struct {
	domain.Role `yaml:",inline"`
	AllowAll    bool `yaml:"allowAll"`
}

type document struct {
	Roles []roleSeed          `yaml:"roles"`
	Users []domain.UserRecord `yaml:"users"`
}

type Data struct {
	Roles []domain.Role
	Users []domain.UserRecord
}

// Load parses the seed document at path, or the embedded default when path
// is empty. Permission grids are normalized to cover every module.
func Load(path string) (Data, error) {
	raw := defaultSeed
	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			return Data{}, err
		}
		raw = contents
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Data{}, err
	}
	out := Data{Users: doc.Users}
	for _, rs := range doc.Roles {
		role := rs.Role
		role.Permissions = role.Permissions.Clone()
		if rs.AllowAll {
			role.Permissions.SetAll(true)
		}
		out.Roles = append(out.Roles, role)
	}
	return out, nil
}
