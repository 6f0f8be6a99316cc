package models

import (
	"auto-validator/core/reconcile"
)

// Validator represents the 'core_validator' table.
type Validator struct {
	ID        uint   `gorm:"column:id;primaryKey" json:"id"`
	ShortName string `gorm:"column:short_name;size:255;not null;uniqueIndex" json:"short_name"`
	LongName  string `gorm:"column:long_name;size:255;not null;uniqueIndex" json:"long_name"`
	LastStake int64  `gorm:"column:last_stake;not null" json:"last_stake"`
}

// TableName overrides the table name for the core schema.
func (Validator) TableName() string {
	return "core_validator"
}

// Subnet represents the 'core_subnet' table.
type Subnet struct {
	ID                   uint     `gorm:"column:id;primaryKey" json:"id"`
	Name                 string   `gorm:"column:name;size:255;not null" json:"name"`
	Description          *string  `gorm:"column:description;type:text" json:"description"`
	Codename             string   `gorm:"column:codename;size:255;not null;uniqueIndex" json:"codename"`
	MainnetNetuid        *int     `gorm:"column:mainnet_netuid" json:"mainnet_netuid"`
	TestnetNetuid        *int     `gorm:"column:testnet_netuid" json:"testnet_netuid"`
	OwnerNick            *string  `gorm:"column:owner_nick;size:255" json:"owner_nick"`
	OwnerDiscordID       *string  `gorm:"column:owner_discord_id;size:255" json:"owner_discord_id"`
	MaintainerDiscordIDs []string `gorm:"column:maintainer_discord_ids;type:text;serializer:json" json:"maintainer_discord_ids"`
	GithubRepo           *string  `gorm:"column:github_repo;size:255" json:"github_repo"`
	HardwareDescription  *string  `gorm:"column:hardware_description;type:text" json:"hardware_description"`
	AllowedSecrets       []string `gorm:"column:allowed_secrets;type:text;serializer:json" json:"allowed_secrets"`
	DumperCommands       []string `gorm:"column:dumper_commands;type:text;serializer:json" json:"dumper_commands"`
}

// TableName overrides the table name for the core schema.
func (Subnet) TableName() string {
	return "core_subnet"
}

// ExternalHotkey represents the 'core_externalhotkey' table.
// SubnetID is null for default hotkeys.
type ExternalHotkey struct {
	ID                      uint    `gorm:"column:id;primaryKey" json:"id"`
	Name                    string  `gorm:"column:name;size:255;not null" json:"name"`
	Hotkey                  string  `gorm:"column:hotkey;size:48;not null;uniqueIndex" json:"hotkey"`
	SubnetID                *uint   `gorm:"column:subnet_id;index" json:"subnet_id"`
	DelegateStakePercentage float64 `gorm:"column:delegate_stake_percentage;not null;default:0" json:"delegate_stake_percentage"`
}

// TableName overrides the table name for the core schema.
func (ExternalHotkey) TableName() string {
	return "core_externalhotkey"
}

// ValidatorHotkey represents the 'core_validatorhotkey' table.
// A hotkey belongs to at most one assignment.
type ValidatorHotkey struct {
	ID               uint `gorm:"column:id;primaryKey" json:"id"`
	ValidatorID      uint `gorm:"column:validator_id;not null;index" json:"validator_id"`
	ExternalHotkeyID uint `gorm:"column:external_hotkey_id;not null;uniqueIndex" json:"external_hotkey_id"`
	IsDefault        bool `gorm:"column:is_default;not null" json:"is_default"`
}

// TableName overrides the table name for the core schema.
func (ValidatorHotkey) TableName() string {
	return "core_validatorhotkey"
}

// ValidatorSubnet represents the 'core_validator_subnets' membership table.
type ValidatorSubnet struct {
	ValidatorID uint `gorm:"column:validator_id;primaryKey;autoIncrement:false"`
	SubnetID    uint `gorm:"column:subnet_id;primaryKey;autoIncrement:false;index"`
}

// TableName overrides the table name for the core schema.
func (ValidatorSubnet) TableName() string {
	return "core_validator_subnets"
}

// The validator manager schema stores the same rows in its own tables.
// Embedding keeps the columns identical while giving GORM distinct index names.

// ManagerValidator represents the 'validator_manager_validator' table.
type ManagerValidator struct{ Validator }

// TableName overrides the table name for the validator manager schema.
func (ManagerValidator) TableName() string { return "validator_manager_validator" }

// ManagerSubnet represents the 'validator_manager_subnet' table.
type ManagerSubnet struct{ Subnet }

// TableName overrides the table name for the validator manager schema.
func (ManagerSubnet) TableName() string { return "validator_manager_subnet" }

// ManagerExternalHotkey represents the 'validator_manager_externalhotkey' table.
type ManagerExternalHotkey struct{ ExternalHotkey }

// TableName overrides the table name for the validator manager schema.
func (ManagerExternalHotkey) TableName() string { return "validator_manager_externalhotkey" }

// ManagerValidatorHotkey represents the 'validator_manager_validatorhotkey' table.
type ManagerValidatorHotkey struct{ ValidatorHotkey }

// TableName overrides the table name for the validator manager schema.
func (ManagerValidatorHotkey) TableName() string { return "validator_manager_validatorhotkey" }

// ManagerValidatorSubnet represents the 'validator_manager_validator_subnets' table.
type ManagerValidatorSubnet struct{ ValidatorSubnet }

// TableName overrides the table name for the validator manager schema.
func (ManagerValidatorSubnet) TableName() string { return "validator_manager_validator_subnets" }

// Schema names the tables backing one reconciliation target.
type Schema struct {
	Name             string
	Mode             reconcile.Mode
	Validators       string
	Subnets          string
	Hotkeys          string
	Assignments      string
	ValidatorSubnets string

	models []any
}

var (
	// Core is the primary schema. Subnets must exist before a sync references them.
	Core = Schema{
		Name:             "core",
		Mode:             reconcile.ModeCore,
		Validators:       Validator{}.TableName(),
		Subnets:          Subnet{}.TableName(),
		Hotkeys:          ExternalHotkey{}.TableName(),
		Assignments:      ValidatorHotkey{}.TableName(),
		ValidatorSubnets: ValidatorSubnet{}.TableName(),
		models:           []any{&Validator{}, &Subnet{}, &ExternalHotkey{}, &ValidatorHotkey{}, &ValidatorSubnet{}},
	}

	// ValidatorManager is the secondary schema. Sync creates missing subnets.
	ValidatorManager = Schema{
		Name:             "validator_manager",
		Mode:             reconcile.ModeValidatorManager,
		Validators:       ManagerValidator{}.TableName(),
		Subnets:          ManagerSubnet{}.TableName(),
		Hotkeys:          ManagerExternalHotkey{}.TableName(),
		Assignments:      ManagerValidatorHotkey{}.TableName(),
		ValidatorSubnets: ManagerValidatorSubnet{}.TableName(),
		models: []any{&ManagerValidator{}, &ManagerSubnet{}, &ManagerExternalHotkey{},
			&ManagerValidatorHotkey{}, &ManagerValidatorSubnet{}},
	}
)

// Schemas lists every schema in migration order.
func Schemas() []Schema {
	return []Schema{Core, ValidatorManager}
}

// SchemaByName resolves a schema name; empty selects Core.
func SchemaByName(name string) (Schema, error) {
	mode, err := reconcile.ParseMode(name)
	if err != nil {
		return Schema{}, err
	}
	if mode == reconcile.ModeValidatorManager {
		return ValidatorManager, nil
	}
	return Core, nil
}

// Models returns the GORM models of the schema for AutoMigrate.
func (s Schema) Models() []any {
	return s.models
}

// ExpectedColumns lists the columns the store relies on, per table.
func (s Schema) ExpectedColumns() map[string][]string {
	return map[string][]string{
		s.Validators:       {"id", "short_name", "long_name", "last_stake"},
		s.Subnets:          {"id", "name", "codename", "mainnet_netuid", "testnet_netuid", "dumper_commands"},
		s.Hotkeys:          {"id", "name", "hotkey", "subnet_id", "delegate_stake_percentage"},
		s.Assignments:      {"id", "validator_id", "external_hotkey_id", "is_default"},
		s.ValidatorSubnets: {"validator_id", "subnet_id"},
	}
}

// Setting represents the 'core_setting' key/value table holding runtime toggles.
type Setting struct {
	Name  string `gorm:"column:name;primaryKey;size:191"`
	Value string `gorm:"column:value;size:255;not null"`
}

// TableName overrides the table name.
func (Setting) TableName() string {
	return "core_setting"
}
