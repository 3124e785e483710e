// Package config loads and validates the TOML configuration file that
// describes a blockdreamer run: network selection, the canonical beacon
// node, the set of dreaming nodes, and the sinks dream blocks are
// dispatched to (§6).
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "config")

// NodeConfig describes one candidate block-producing node (§3).
type NodeConfig struct {
	Name                   string  `toml:"name"`
	Label                  string  `toml:"label"`
	URL                    string  `toml:"url"`
	Enabled                *bool   `toml:"enabled"`
	SkipRandaoVerification bool    `toml:"skip_randao_verification"`
	SSZ                    *bool   `toml:"ssz"`
	V3                     bool    `toml:"v3"`
	BuilderBoostFactor     *uint64 `toml:"builder_boost_factor"`

	// UseBuilder is deprecated and ignored; accepted only so that older
	// config files keep loading. Use BuilderBoostFactor instead.
	UseBuilder *bool `toml:"use_builder"`
}

// IsEnabled defaults to true when unset.
func (n NodeConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// UsesSSZ defaults to true when unset.
func (n NodeConfig) UsesSSZ() bool {
	return n.SSZ == nil || *n.SSZ
}

// PostEndpointConfig describes one sink dream blocks are dispatched to
// (§4.6).
type PostEndpointConfig struct {
	Name              string `toml:"name"`
	URL               string `toml:"url"`
	ResultsDir        string `toml:"results_dir"`
	ExtraData         *bool  `toml:"extra_data"`
	CompareRewards    bool   `toml:"compare_rewards"`
	RequireAll        bool   `toml:"require_all"`
	RequireSameParent bool   `toml:"require_same_parent"`
}

// WantsExtraData defaults to true when unset.
func (p PostEndpointConfig) WantsExtraData() bool {
	return p.ExtraData == nil || *p.ExtraData
}

// fileConfig mirrors the TOML schema exactly, including the legacy
// singular post_endpoint table accepted for backward compatibility
// (§9 open question: the canonical schema is the §6 union; older fields
// are accepted with a deprecation warning but not required).
type fileConfig struct {
	Network      string               `toml:"network"`
	NetworkDir   string               `toml:"network_dir"`
	CanonicalBN  string               `toml:"canonical_bn"`
	PostEndpoint *PostEndpointConfig  `toml:"post_endpoint"`
	PostEndpoints []PostEndpointConfig `toml:"post_endpoints"`
	Nodes        []NodeConfig         `toml:"nodes"`

	// VerifyRandao is deprecated and ignored.
	VerifyRandao *bool `toml:"verify_randao"`
}

// Config is the validated, immutable configuration for a run. Nothing
// mutates it after Load returns; components close over it read-only
// (§5 "Sharing").
type Config struct {
	Network       string
	NetworkDir    string
	CanonicalBN   string
	PostEndpoints []PostEndpointConfig
	Nodes         []NodeConfig
}

// Load reads and validates the TOML file at path, rejecting unknown
// fields and enforcing the network/network_dir exclusivity rule.
func Load(path string) (*Config, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode config file")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config field(s): %v", undecoded)
	}

	if (fc.Network == "") == (fc.NetworkDir == "") {
		return nil, errors.New("exactly one of network or network_dir must be set")
	}
	if fc.CanonicalBN == "" {
		return nil, errors.New("canonical_bn is required")
	}
	if len(fc.Nodes) == 0 {
		return nil, errors.New("at least one node must be configured")
	}

	if fc.VerifyRandao != nil {
		log.Warn("verify_randao is deprecated and ignored")
	}
	for _, n := range fc.Nodes {
		if n.UseBuilder != nil {
			log.WithField("node", n.Name).Warn("use_builder is deprecated and ignored; set builder_boost_factor instead")
		}
	}

	seen := make(map[string]bool, len(fc.Nodes))
	for _, n := range fc.Nodes {
		if n.Name == "" {
			return nil, errors.New("node name must not be empty")
		}
		if seen[n.Name] {
			return nil, errors.Errorf("duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
	}

	endpoints := fc.PostEndpoints
	if fc.PostEndpoint != nil {
		log.Warn("post_endpoint is deprecated; use post_endpoints instead")
		endpoints = append(endpoints, *fc.PostEndpoint)
	}

	return &Config{
		Network:       fc.Network,
		NetworkDir:    fc.NetworkDir,
		CanonicalBN:   fc.CanonicalBN,
		PostEndpoints: endpoints,
		Nodes:         fc.Nodes,
	}, nil
}
