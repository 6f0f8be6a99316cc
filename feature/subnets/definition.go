package subnets

import (
	"fmt"
	"strconv"
	"strings"

	"auto-validator/core/reconcile"
	"auto-validator/core/utils"
	"auto-validator/feature/validators/models"

	"gopkg.in/yaml.v3"
)

// Definition is one subnet entry of the configuration document.
// Keys the table does not track, such as bittensor_id and twitter, are dropped.
type Definition struct {
	Codename             string   `json:"codename"`
	Name                 string   `json:"name"`
	Description          *string  `json:"description"`
	MainnetNetuid        *int     `json:"mainnet_netuid"`
	TestnetNetuid        *int     `json:"testnet_netuid"`
	OwnerNick            *string  `json:"owner_nick"`
	OwnerDiscordID       *string  `json:"owner_discord_id"`
	MaintainerDiscordIDs []string `json:"maintainer_discord_ids"`
	GithubRepo           *string  `json:"github_repo"`
	HardwareDescription  *string  `json:"hardware_description"`
	AllowedSecrets       []string `json:"allowed_secrets"`
	DumperCommands       []string `json:"dumper_commands"`
}

// ParseDefinitions decodes the subnet document in document order.
// Aliases and merge keys are resolved; a repeated codename keeps its last value.
// An empty document yields no definitions.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrLoad, err)
	}
	if len(doc.Content) == 0 {
		return []Definition{}, nil
	}
	root := reconcile.ResolveAlias(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return []Definition{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: subnet document must be a mapping", reconcile.ErrLoad)
	}

	pairs, err := reconcile.MappingPairs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrLoad, err)
	}
	defs := make([]Definition, 0, len(pairs))
	for _, pair := range pairs {
		key, value := pair.Key, pair.Value
		fields := map[string]any{}
		if value.ShortTag() != "!!null" {
			if value.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: subnet %q must be a mapping", reconcile.ErrLoad, key.Value)
			}
			// Decode resolves nested aliases and merge keys.
			if err := value.Decode(&fields); err != nil {
				return nil, fmt.Errorf("%w: subnet %q: %w", reconcile.ErrLoad, key.Value, err)
			}
		}
		defs = append(defs, definitionFrom(key.Value, fields))
	}
	return defs, nil
}

// definitionFrom tolerates loosely typed values, e.g. netuids written as strings.
func definitionFrom(codename string, fields map[string]any) Definition {
	return Definition{
		Codename:             codename,
		Name:                 utils.ToString(fields["name"]),
		Description:          utils.ToStringPtr(fields["description"]),
		MainnetNetuid:        utils.ToIntPtr(fields["mainnet_netuid"]),
		TestnetNetuid:        utils.ToIntPtr(fields["testnet_netuid"]),
		OwnerNick:            utils.ToStringPtr(fields["owner_nick"]),
		OwnerDiscordID:       utils.ToStringPtr(fields["owner_discord_id"]),
		MaintainerDiscordIDs: utils.ToStringSlice(fields["maintainer_discord_ids"]),
		GithubRepo:           utils.ToStringPtr(fields["github_repo"]),
		HardwareDescription:  utils.ToStringPtr(fields["hardware_description"]),
		AllowedSecrets:       utils.ToStringSlice(fields["allowed_secrets"]),
		DumperCommands:       utils.ToStringSlice(fields["dumper_commands"]),
	}
}

func (d Definition) normalized() Definition {
	if d.MaintainerDiscordIDs == nil {
		d.MaintainerDiscordIDs = []string{}
	}
	if d.AllowedSecrets == nil {
		d.AllowedSecrets = []string{}
	}
	if d.DumperCommands == nil {
		d.DumperCommands = []string{}
	}
	return d
}

// Matches reports whether identifier names this subnet: its codename, its
// mainnet netuid with or without an "sn" prefix, or its testnet netuid.
// Comparison is case-insensitive.
func (d Definition) Matches(identifier string) bool {
	id := strings.ToLower(strings.TrimSpace(identifier))
	candidates := []string{d.Codename}
	if d.MainnetNetuid != nil {
		n := strconv.Itoa(*d.MainnetNetuid)
		candidates = append(candidates, n, "sn"+n)
	}
	if d.TestnetNetuid != nil {
		candidates = append(candidates, strconv.Itoa(*d.TestnetNetuid))
	}
	for _, c := range candidates {
		if strings.ToLower(c) == id {
			return true
		}
	}
	return false
}

// Model converts the definition into a subnet row without an id.
func (d Definition) Model() models.Subnet {
	return models.Subnet{
		Name:                 d.Name,
		Description:          d.Description,
		Codename:             d.Codename,
		MainnetNetuid:        d.MainnetNetuid,
		TestnetNetuid:        d.TestnetNetuid,
		OwnerNick:            d.OwnerNick,
		OwnerDiscordID:       d.OwnerDiscordID,
		MaintainerDiscordIDs: d.MaintainerDiscordIDs,
		GithubRepo:           d.GithubRepo,
		HardwareDescription:  d.HardwareDescription,
		AllowedSecrets:       d.AllowedSecrets,
		DumperCommands:       d.DumperCommands,
	}
}

// FromModel projects a subnet row onto the document shape, dropping its id.
func FromModel(s models.Subnet) Definition {
	return Definition{
		Codename:             s.Codename,
		Name:                 s.Name,
		Description:          s.Description,
		MainnetNetuid:        s.MainnetNetuid,
		TestnetNetuid:        s.TestnetNetuid,
		OwnerNick:            s.OwnerNick,
		OwnerDiscordID:       s.OwnerDiscordID,
		MaintainerDiscordIDs: s.MaintainerDiscordIDs,
		GithubRepo:           s.GithubRepo,
		HardwareDescription:  s.HardwareDescription,
		AllowedSecrets:       s.AllowedSecrets,
		DumperCommands:       s.DumperCommands,
	}.normalized()
}
