package subnets

import (
	"testing"

	"auto-validator/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subnetsYAML = `
omron:
  name: Omron
  description: Proof of inference
  mainnet_netuid: 2
  testnet_netuid: 118
  bittensor_id: 2
  twitter: omron_ai
  maintainer_discord_ids: ["111", "222"]
  allowed_secrets: [HF_TOKEN]
  dumper_commands:
    - dump --netuid 2
apex:
  name: Apex
  mainnet_netuid: 1
`

func TestParseDefinitions(t *testing.T) {
	defs, err := ParseDefinitions([]byte(subnetsYAML))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, "omron", defs[0].Codename)
	assert.Equal(t, "Omron", defs[0].Name)
	require.NotNil(t, defs[0].MainnetNetuid)
	assert.Equal(t, 2, *defs[0].MainnetNetuid)
	assert.Equal(t, []string{"111", "222"}, defs[0].MaintainerDiscordIDs)
	assert.Equal(t, []string{"dump --netuid 2"}, defs[0].DumperCommands)

	assert.Equal(t, "apex", defs[1].Codename, "document order is kept")
	assert.Nil(t, defs[1].TestnetNetuid)
	assert.Equal(t, []string{}, defs[1].DumperCommands)
}

func TestParseDefinitions_LooseValues(t *testing.T) {
	doc := `
sturdy:
  name: Sturdy
  mainnet_netuid: "10"
  testnet_netuid: ~
  owner_discord_id: 123456789
  allowed_secrets: OPENAI_KEY
empty:
`
	defs, err := ParseDefinitions([]byte(doc))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	require.NotNil(t, defs[0].MainnetNetuid)
	assert.Equal(t, 10, *defs[0].MainnetNetuid)
	assert.Nil(t, defs[0].TestnetNetuid)
	require.NotNil(t, defs[0].OwnerDiscordID)
	assert.Equal(t, "123456789", *defs[0].OwnerDiscordID)
	assert.Equal(t, []string{"OPENAI_KEY"}, defs[0].AllowedSecrets)
	assert.True(t, defs[0].Matches("sn10"))

	assert.Equal(t, "empty", defs[1].Codename)
	assert.Equal(t, "", defs[1].Name)
	assert.Nil(t, defs[1].MainnetNetuid)
}

func TestParseDefinitions_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"list document": "- a\n- b\n",
		"scalar entry":  "omron: 5\n",
		"bad yaml":      "omron: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDefinitions([]byte(doc))
			assert.ErrorIs(t, err, reconcile.ErrLoad)
		})
	}

	defs, err := ParseDefinitions([]byte("# nothing yet\n"))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestDefinitionMatches(t *testing.T) {
	defs, err := ParseDefinitions([]byte(subnetsYAML))
	require.NoError(t, err)
	omron, apex := defs[0], defs[1]

	assert.True(t, omron.Matches("omron"))
	assert.True(t, omron.Matches("OMRON"))
	assert.True(t, omron.Matches("2"))
	assert.True(t, omron.Matches("SN2"))
	assert.True(t, omron.Matches("118"))
	assert.False(t, omron.Matches("sn118"))
	assert.False(t, apex.Matches("none"), "absent netuids never match")
}

func TestModelRoundTrip(t *testing.T) {
	defs, err := ParseDefinitions([]byte(subnetsYAML))
	require.NoError(t, err)
	assert.Equal(t, defs[0], FromModel(defs[0].Model()))
}

func TestParseDefinitions_AliasesAndDuplicates(t *testing.T) {
	doc := `
omron: &omron
  name: Omron
  mainnet_netuid: 2
  dumper_commands: &dump
    - dump --netuid 2
omron_test:
  <<: *omron
  name: Omron Testnet
  mainnet_netuid: ~
  testnet_netuid: 118
apex: *omron
sturdy:
  name: Old
sturdy:
  name: Sturdy
  dumper_commands: *dump
`
	defs, err := ParseDefinitions([]byte(doc))
	require.NoError(t, err)
	require.Len(t, defs, 4)

	merged := defs[1]
	assert.Equal(t, "omron_test", merged.Codename)
	assert.Equal(t, "Omron Testnet", merged.Name)
	assert.Nil(t, merged.MainnetNetuid)
	require.NotNil(t, merged.TestnetNetuid)
	assert.Equal(t, 118, *merged.TestnetNetuid)
	assert.Equal(t, []string{"dump --netuid 2"}, merged.DumperCommands)

	aliased := defs[2]
	assert.Equal(t, "apex", aliased.Codename)
	assert.Equal(t, "Omron", aliased.Name)

	assert.Equal(t, "sturdy", defs[3].Codename)
	assert.Equal(t, "Sturdy", defs[3].Name, "a repeated codename keeps its last value")
	assert.Equal(t, []string{"dump --netuid 2"}, defs[3].DumperCommands)
}
