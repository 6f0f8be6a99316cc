package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FetchFunc reads the raw bytes of a configuration document.
type FetchFunc func(ctx context.Context, location string) ([]byte, error)

// LoadValidators fetches location and parses it into records.
// Every failure matches ErrLoad.
func LoadValidators(ctx context.Context, fetch FetchFunc, location string) ([]Record, error) {
	if fetch == nil {
		return nil, loadError("fetch", errors.New("no fetcher configured"))
	}
	data, err := fetch(ctx, location)
	if err != nil {
		return nil, loadError("fetch "+location, err)
	}
	return ParseValidators(data)
}

// ParseValidators parses a validators document keyed by short name.
//
// Document order is kept for validators and for subnet hotkey lists.
// Anchors, aliases and merge keys are resolved. A short name repeated at the
// top level keeps its first position and its last value.
// last_stake defaults to 0 and subnet_hotkeys to an empty list. long_name is
// not checked here; Reconcile rejects records without it.
func ParseValidators(data []byte) ([]Record, error) {
	root, err := documentMapping(data)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return []Record{}, nil
	}

	pairs, err := MappingPairs(root)
	if err != nil {
		return nil, loadError("parse", err)
	}
	records := make([]Record, 0, len(pairs))
	for _, pair := range pairs {
		record, err := parseRecord(pair.Key, pair.Value)
		if err != nil {
			return nil, loadError("parse", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// documentMapping decodes data and returns its top-level mapping node.
// A nil node means the document is empty.
func documentMapping(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, loadError("decode yaml", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := ResolveAlias(doc.Content[0])
	if isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, loadError("decode yaml", fmt.Errorf("line %d: top level must be a mapping", root.Line))
	}
	return root, nil
}

// ResolveAlias follows alias nodes to the node they point at.
func ResolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// Pair is one resolved key/value entry of a YAML mapping.
type Pair struct {
	Key   *yaml.Node
	Value *yaml.Node
}

// MappingPairs returns the entries of a mapping node in document order with
// aliases resolved and merge keys ("<<") expanded. Explicit keys override
// merged ones and a repeated key keeps its first position with its last value.
func MappingPairs(node *yaml.Node) ([]Pair, error) {
	return mappingPairs(node, 0)
}

func mappingPairs(node *yaml.Node, depth int) ([]Pair, error) {
	node = ResolveAlias(node)
	if node == nil || node.Kind != yaml.MappingNode {
		line := 0
		if node != nil {
			line = node.Line
		}
		return nil, fmt.Errorf("line %d: must be a mapping", line)
	}
	if depth > 32 {
		return nil, fmt.Errorf("line %d: merge keys nested too deeply", node.Line)
	}

	explicit := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := ResolveAlias(node.Content[i]); !isMergeKey(key) {
			explicit[key.Value] = struct{}{}
		}
	}

	var pairs []Pair
	index := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := ResolveAlias(node.Content[i]), ResolveAlias(node.Content[i+1])
		if !isMergeKey(key) {
			if at, seen := index[key.Value]; seen {
				pairs[at].Value = value
				continue
			}
			index[key.Value] = len(pairs)
			pairs = append(pairs, Pair{Key: key, Value: value})
			continue
		}

		sources := []*yaml.Node{value}
		if value.Kind == yaml.SequenceNode {
			sources = value.Content
		}
		for _, src := range sources {
			merged, err := mappingPairs(src, depth+1)
			if err != nil {
				return nil, fmt.Errorf("merge key: %w", err)
			}
			for _, p := range merged {
				if _, ok := explicit[p.Key.Value]; ok {
					continue
				}
				// Earlier merge sources win.
				if _, seen := index[p.Key.Value]; seen {
					continue
				}
				index[p.Key.Value] = len(pairs)
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

func isMergeKey(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge"
}

func parseRecord(key, value *yaml.Node) (Record, error) {
	record := Record{ShortName: key.Value}
	stake := int64(0)
	record.LastStake = &stake

	value = ResolveAlias(value)
	if isNull(value) {
		return record, nil
	}
	if value.Kind != yaml.MappingNode {
		return Record{}, fmt.Errorf("line %d: validator %q must be a mapping", value.Line, key.Value)
	}

	fields, err := MappingPairs(value)
	if err != nil {
		return Record{}, fmt.Errorf("validator %q: %w", key.Value, err)
	}
	for _, f := range fields {
		field, node := f.Key.Value, f.Value
		switch field {
		case "long_name":
			if !isNull(node) {
				v := node.Value
				record.LongName = &v
			}
		case "last_stake":
			if isNull(node) {
				continue
			}
			v, err := parseStake(node)
			if err != nil {
				return Record{}, fmt.Errorf("line %d: last_stake of %q: %w", node.Line, key.Value, err)
			}
			record.LastStake = &v
		case "default_hotkey":
			if !isNull(node) {
				record.DefaultHotkey = node.Value
			}
		case "subnet_hotkeys":
			subnets, err := parseSubnetHotkeys(node)
			if err != nil {
				return Record{}, fmt.Errorf("subnet_hotkeys of %q: %w", key.Value, err)
			}
			record.SubnetHotkeys = subnets
		}
	}

	if record.SubnetHotkeys == nil {
		record.SubnetHotkeys = []SubnetHotkeys{}
	}
	return record, nil
}

func parseSubnetHotkeys(node *yaml.Node) ([]SubnetHotkeys, error) {
	node = ResolveAlias(node)
	if isNull(node) {
		return []SubnetHotkeys{}, nil
	}
	pairs, err := MappingPairs(node)
	if err != nil {
		return nil, err
	}

	out := make([]SubnetHotkeys, 0, len(pairs))
	for _, pair := range pairs {
		codename, list := pair.Key.Value, pair.Value
		hotkeys := []string{}
		switch {
		case isNull(list):
		case list.Kind == yaml.SequenceNode:
			for _, item := range list.Content {
				item = ResolveAlias(item)
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("line %d: hotkey of %q must be a string", item.Line, codename)
				}
				hotkeys = append(hotkeys, item.Value)
			}
		default:
			return nil, fmt.Errorf("line %d: hotkeys of %q must be a list", list.Line, codename)
		}
		out = append(out, SubnetHotkeys{Codename: codename, Hotkeys: hotkeys})
	}
	return out, nil
}

func parseStake(node *yaml.Node) (int64, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, errors.New("must be an integer")
	}
	if v, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
		return v, nil
	}
	// Stake values exported as floats are truncated.
	f, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("must be an integer, got %q", node.Value)
	}
	return int64(f), nil
}

func isNull(node *yaml.Node) bool {
	node = ResolveAlias(node)
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}
