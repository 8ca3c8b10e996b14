package keyring

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/httpsign/cavage"
)

// Config is the YAML document describing the peers a service signs for
// and verifies against.
type Config struct {
	// Clients lists inbound callers whose signatures are verified.
	Clients []ClientConfig `yaml:"clients"`

	// Targets lists outbound destinations requests are signed for.
	Targets []TargetConfig `yaml:"targets"`
}

// ClientConfig describes one inbound caller. Exactly one of PublicKey,
// PublicKeyFile or HMACSecret must be set.
type ClientConfig struct {
	// KeyID matches the keyId field of incoming signatures. Required.
	KeyID string `yaml:"key_id"`

	// Principal names the authenticated party. Defaults to KeyID.
	Principal string `yaml:"principal"`

	// Algorithm restricts the client to a single algorithm when set.
	Algorithm string `yaml:"algorithm"`

	// PublicKey is an inline PEM public key.
	PublicKey string `yaml:"public_key"`

	// PublicKeyFile is a path to a PEM public key.
	PublicKeyFile string `yaml:"public_key_file"`

	// HMACSecret is a secret reference, see ResolveSecret.
	HMACSecret string `yaml:"hmac_secret"`
}

// TargetConfig describes one outbound destination. Exactly one of
// PrivateKey, PrivateKeyFile or HMACSecret must be set.
type TargetConfig struct {
	// Name identifies the target for lookups. Required.
	Name string `yaml:"name"`

	// KeyID identifies the signing key to the destination. Required.
	KeyID string `yaml:"key_id"`

	// Algorithm selects the signature algorithm. When empty, it is
	// derived from the key material.
	Algorithm string `yaml:"algorithm"`

	// PrivateKey is an inline PEM private key.
	PrivateKey string `yaml:"private_key"`

	// PrivateKeyFile is a path to a PEM private key.
	PrivateKeyFile string `yaml:"private_key_file"`

	// HMACSecret is a secret reference, see ResolveSecret.
	HMACSecret string `yaml:"hmac_secret"`

	// Placement is "signature" (default) or "authorization".
	Placement string `yaml:"placement"`

	// Headers selects the signed components, optionally per method.
	Headers *HeadersSelection `yaml:"headers"`

	// Digest enables body digests: "sha-256" or "sha-512".
	Digest string `yaml:"digest"`
}

// HeadersSelection mirrors cavage.HeadersConfig in configuration form.
// Method keys are normalized to uppercase.
type HeadersSelection struct {
	Default  []string            `yaml:"default"`
	ByMethod map[string][]string `yaml:"by_method"`
}

// Ring is the materialized peer registry: verification keys and
// principals for inbound callers, signing definitions for outbound
// targets. A Ring is immutable after construction and safe for
// concurrent use.
type Ring struct {
	inbound  []cavage.InboundClient
	clients  map[string]cavage.InboundClient
	targets  map[string]cavage.OutboundTarget
	resolver cavage.KeyResolver
}

// Load reads and materializes a ring configuration file.
func Load(path string) (*Ring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: read config: %w", err)
	}

	return Parse(data)
}

// Parse materializes a ring from YAML configuration data.
func Parse(data []byte) (*Ring, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return New(cfg)
}

// New materializes a ring from an already-decoded configuration. Key
// files are read and secret references resolved at this point, so a
// returned Ring holds usable key material only.
func New(cfg Config) (*Ring, error) {
	ring := &Ring{
		inbound: make([]cavage.InboundClient, 0, len(cfg.Clients)),
		clients: make(map[string]cavage.InboundClient, len(cfg.Clients)),
		targets: make(map[string]cavage.OutboundTarget, len(cfg.Targets)),
	}

	for i, clientCfg := range cfg.Clients {
		client, err := clientCfg.build()
		if err != nil {
			return nil, fmt.Errorf("%w: clients[%d]: %v", ErrInvalidConfig, i, err)
		}

		if _, dup := ring.clients[client.KeyID]; dup {
			return nil, fmt.Errorf("%w: duplicate client key id %q", ErrInvalidConfig, client.KeyID)
		}

		ring.clients[client.KeyID] = client
		ring.inbound = append(ring.inbound, client)
	}

	for i, targetCfg := range cfg.Targets {
		target, err := targetCfg.build()
		if err != nil {
			return nil, fmt.Errorf("%w: targets[%d]: %v", ErrInvalidConfig, i, err)
		}

		if _, dup := ring.targets[targetCfg.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate target name %q", ErrInvalidConfig, targetCfg.Name)
		}

		ring.targets[targetCfg.Name] = target
	}

	ring.resolver = cavage.StaticResolver(ring.inbound...)

	return ring, nil
}

// Resolver returns a cavage.KeyResolver backed by the ring's clients.
func (r *Ring) Resolver() cavage.KeyResolver {
	return r.resolver
}

// Principal returns the configured principal for a key id. The second
// return value reports whether the key id is known.
func (r *Ring) Principal(keyID string) (string, bool) {
	client, ok := r.clients[keyID]
	if !ok {
		return "", false
	}

	return client.Principal, true
}

// Clients returns the inbound client definitions in configuration order.
func (r *Ring) Clients() []cavage.InboundClient {
	return slices.Clone(r.inbound)
}

// Target returns the outbound signing definition registered under name.
func (r *Ring) Target(name string) (cavage.OutboundTarget, error) {
	target, ok := r.targets[name]
	if !ok {
		return cavage.OutboundTarget{}, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
	}

	return target, nil
}

// TargetNames returns the configured target names, sorted.
func (r *Ring) TargetNames() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func (c ClientConfig) build() (cavage.InboundClient, error) {
	if c.KeyID == "" {
		return cavage.InboundClient{}, errors.New("key_id is required")
	}

	key, err := c.keyMaterial()
	if err != nil {
		return cavage.InboundClient{}, err
	}

	alg, err := parseAlgorithm(c.Algorithm)
	if err != nil {
		return cavage.InboundClient{}, err
	}

	principal := c.Principal
	if principal == "" {
		principal = c.KeyID
	}

	return cavage.InboundClient{
		KeyID:     c.KeyID,
		Principal: principal,
		Algorithm: alg,
		Key:       key,
	}, nil
}

func (c TargetConfig) build() (cavage.OutboundTarget, error) {
	if c.Name == "" {
		return cavage.OutboundTarget{}, errors.New("name is required")
	}

	if c.KeyID == "" {
		return cavage.OutboundTarget{}, errors.New("key_id is required")
	}

	key, err := c.keyMaterial()
	if err != nil {
		return cavage.OutboundTarget{}, err
	}

	alg, err := parseAlgorithm(c.Algorithm)
	if err != nil {
		return cavage.OutboundTarget{}, err
	}

	var placement cavage.Placement

	switch strings.ToLower(c.Placement) {
	case "", "signature":
		placement = cavage.PlacementSignature
	case "authorization":
		placement = cavage.PlacementAuthorization
	default:
		return cavage.OutboundTarget{}, fmt.Errorf("unknown placement %q", c.Placement)
	}

	var digest cavage.DigestAlgorithm

	switch {
	case c.Digest == "":
	case strings.EqualFold(c.Digest, string(cavage.DigestSHA256)):
		digest = cavage.DigestSHA256
	case strings.EqualFold(c.Digest, string(cavage.DigestSHA512)):
		digest = cavage.DigestSHA512
	default:
		return cavage.OutboundTarget{}, fmt.Errorf("unsupported digest algorithm %q", c.Digest)
	}

	var headers *cavage.HeadersConfig
	if c.Headers != nil {
		byMethod := make(map[string][]string, len(c.Headers.ByMethod))
		for method, list := range c.Headers.ByMethod {
			byMethod[strings.ToUpper(method)] = list
		}

		headers = &cavage.HeadersConfig{
			Default:  c.Headers.Default,
			ByMethod: byMethod,
		}
	}

	return cavage.OutboundTarget{
		KeyID:           c.KeyID,
		Algorithm:       alg,
		Key:             key,
		SignedHeaders:   headers,
		Placement:       placement,
		DigestAlgorithm: digest,
	}, nil
}

func (c ClientConfig) keyMaterial() (cavage.KeyMaterial, error) {
	if err := exactlyOneKeySource(c.PublicKey, c.PublicKeyFile, c.HMACSecret); err != nil {
		return cavage.KeyMaterial{}, err
	}

	switch {
	case c.PublicKey != "":
		key, err := ParsePublicKey([]byte(c.PublicKey))
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.PublicKeyMaterial(key), nil

	case c.PublicKeyFile != "":
		key, err := ReadPublicKeyFile(c.PublicKeyFile)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.PublicKeyMaterial(key), nil

	default:
		secret, err := ResolveSecret(c.HMACSecret)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.SecretKeyMaterial(secret), nil
	}
}

func (c TargetConfig) keyMaterial() (cavage.KeyMaterial, error) {
	if err := exactlyOneKeySource(c.PrivateKey, c.PrivateKeyFile, c.HMACSecret); err != nil {
		return cavage.KeyMaterial{}, err
	}

	switch {
	case c.PrivateKey != "":
		key, err := ParsePrivateKey([]byte(c.PrivateKey))
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.PrivateKeyMaterial(key), nil

	case c.PrivateKeyFile != "":
		key, err := ReadPrivateKeyFile(c.PrivateKeyFile)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.PrivateKeyMaterial(key), nil

	default:
		secret, err := ResolveSecret(c.HMACSecret)
		if err != nil {
			return cavage.KeyMaterial{}, err
		}

		return cavage.SecretKeyMaterial(secret), nil
	}
}

func exactlyOneKeySource(values ...string) error {
	set := 0
	for _, v := range values {
		if v != "" {
			set++
		}
	}

	if set != 1 {
		return errors.New("exactly one key source is required")
	}

	return nil
}

func parseAlgorithm(token string) (cavage.Algorithm, error) {
	alg := cavage.Algorithm(token)
	if alg != "" && !alg.Supported() {
		return "", fmt.Errorf("unsupported algorithm %q", token)
	}

	return alg, nil
}
