package registry

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Checksum returns a stable hex checksum of content bytes. It is stored on
// registration records as an integrity hint and used as a cache key; it is
// NOT the content identifier (the store derives that).
func Checksum(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}

// ComposeGatewayURL builds a dereferenceable URL for a CID on the given
// gateway base.
func ComposeGatewayURL(base, cid string) string {
	return strings.TrimSuffix(base, "/") + "/ipfs/" + cid
}

// ParseGatewayURL extracts the CID from a gateway URL of the form
// https://<gateway>/ipfs/<cid>.
func ParseGatewayURL(gatewayURL string) (string, error) {
	idx := strings.Index(gatewayURL, "/ipfs/")
	if idx < 0 {
		return "", fmt.Errorf("not a gateway url: %s", gatewayURL)
	}
	cid := strings.Trim(gatewayURL[idx+len("/ipfs/"):], "/")
	if cid == "" {
		return "", fmt.Errorf("gateway url has empty cid: %s", gatewayURL)
	}
	return cid, nil
}

// IsCID is a shallow shape check for content identifiers as returned by the
// pinning service (v0 base58 or v1 base32).
func IsCID(s string) bool {
	if strings.HasPrefix(s, "Qm") && len(s) == 46 {
		return true
	}
	return strings.HasPrefix(s, "baf") && len(s) >= 32
}
