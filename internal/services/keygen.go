package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	// NamespaceSDK tags project-scoped backend SDK keys.
	NamespaceSDK = "otas"
	// NamespaceAgent tags agent keys.
	NamespaceAgent = "agent"

	keyPrefixBytes = 4
	keySecretBytes = 32
)

var ErrMalformedKey = errors.New("malformed key")

// GenerateKey produces a full key "<namespace>_<prefix>_<secret>" and its
// public prefix. The prefix is hex (never contains the separator) and carries
// no secret entropy; it exists only to narrow database lookups.
func GenerateKey(namespace string) (fullKey, prefix string, err error) {
	prefixBytes := make([]byte, keyPrefixBytes)
	if _, err = rand.Read(prefixBytes); err != nil {
		return "", "", err
	}
	secretBytes := make([]byte, keySecretBytes)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", err
	}

	prefix = hex.EncodeToString(prefixBytes)
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)
	fullKey = namespace + "_" + prefix + "_" + secret
	return fullKey, prefix, nil
}

// ParseKey splits a full key into namespace, prefix, and secret. A key that
// does not have exactly three parts, or whose namespace does not match, is
// rejected without any store access.
func ParseKey(fullKey, namespace string) (prefix string, err error) {
	parts := strings.SplitN(fullKey, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", ErrMalformedKey
	}
	if parts[0] != namespace {
		return "", ErrMalformedKey
	}
	return parts[1], nil
}
