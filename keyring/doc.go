// Package keyring loads and resolves the key material the cavage package
// signs and verifies with: PEM key files, secret references, and a
// YAML-backed registry of known peers.
//
// # Ring Configuration
//
// A Ring describes inbound callers (verification keys and principals) and
// outbound targets (signing definitions) in one YAML document:
//
//	clients:
//	  - key_id: portal
//	    principal: portal-service
//	    algorithm: rsa-sha256
//	    public_key_file: keys/portal.pub.pem
//	  - key_id: batch
//	    hmac_secret: env:BATCH_SECRET
//
//	targets:
//	  - name: billing
//	    key_id: my-service
//	    private_key_file: keys/my-service.pem
//	    placement: authorization
//	    digest: sha-256
//	    headers:
//	      default: ["(request-target)", "date"]
//	      by_method:
//	        PUT: ["(request-target)", "date", "digest"]
//
//	ring, err := keyring.Load("keyring.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resolver := ring.Resolver()
//
// # Secret References
//
// Configuration never embeds raw secrets. ResolveSecret materializes
// references of the forms plain:, base64:, env:NAME, file:path and
// secretbox: (a NaCl secretbox value sealed with the master key from
// HTTPSIGN_MASTER_KEY, produced by SealSecret).
//
// # Caching
//
// NewCachedResolver wraps any cavage.KeyResolver with a TTL cache and
// singleflight collapse for resolvers that hit remote key stores.
package keyring
