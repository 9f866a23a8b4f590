// Package verify checks detached OpenPGP signatures over result payloads
// before they are trusted.
package verify

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armorPrefix = "-----BEGIN PGP SIGNATURE-----"

// maxSignatureSize bounds how much of a signature file is read.
const maxSignatureSize = 64 * 1024

// LoadKeyring reads an armored or binary public keyring from path.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	//nolint:gosec // G304: keyring path is user-provided
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read keyring %s: %w", path, err)
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in %s", path)
	}
	return entities, nil
}

// Verifier checks signatures against a fixed keyring.
type Verifier struct {
	keyring openpgp.EntityList
}

// NewVerifier wraps keyring.
func NewVerifier(keyring openpgp.EntityList) *Verifier {
	return &Verifier{keyring: keyring}
}

// KeyCount reports how many entities the verifier trusts.
func (v *Verifier) KeyCount() int {
	return len(v.keyring)
}

// VerifyFile checks sigPath as a detached signature over payloadPath and
// returns the signer's fingerprint.
func (v *Verifier) VerifyFile(payloadPath, sigPath string) (string, error) {
	if len(v.keyring) == 0 {
		return "", fmt.Errorf("no keys loaded")
	}

	//nolint:gosec // G304: signature path is user-provided
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return "", fmt.Errorf("failed to open signature file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer sigFile.Close()

	sig, err := io.ReadAll(io.LimitReader(sigFile, maxSignatureSize))
	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}
	if len(sig) == 0 {
		return "", fmt.Errorf("signature file %s is empty", sigPath)
	}

	//nolint:gosec // G304: payload path is user-provided
	payload, err := os.Open(payloadPath)
	if err != nil {
		return "", fmt.Errorf("failed to open payload: %w", err)
	}
	//nolint:errcheck // Defer close
	defer payload.Close()

	var signer *openpgp.Entity
	if strings.HasPrefix(strings.TrimSpace(string(sig)), armorPrefix) {
		signer, err = openpgp.CheckArmoredDetachedSignature(v.keyring, payload, bytes.NewReader(sig), nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(v.keyring, payload, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}

	return fmt.Sprintf("%X", signer.PrimaryKey.Fingerprint), nil
}
