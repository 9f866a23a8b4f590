package verify

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"success":true,"timestamp":"2024-03-14T09:30:00Z"}`

// signedFixture writes a public keyring, a payload and its armored detached
// signature into a temp dir.
func signedFixture(t *testing.T) (keyring, payloadPath, sigPath string, signer *openpgp.Entity) {
	t.Helper()
	dir := t.TempDir()

	entity, err := openpgp.NewEntity("scanner", "test", "scanner@example.com", nil)
	require.NoError(t, err)

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	keyring = filepath.Join(dir, "keys.asc")
	require.NoError(t, os.WriteFile(keyring, pub.Bytes(), 0600))

	payloadPath = filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(payloadPath, []byte(payload), 0600))

	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader([]byte(payload)), nil))
	sigPath = payloadPath + ".asc"
	require.NoError(t, os.WriteFile(sigPath, sig.Bytes(), 0600))

	return keyring, payloadPath, sigPath, entity
}

func TestVerifyFile(t *testing.T) {
	keyring, payloadPath, sigPath, signer := signedFixture(t)

	keys, err := LoadKeyring(keyring)
	require.NoError(t, err)
	v := NewVerifier(keys)
	assert.Equal(t, 1, v.KeyCount())

	fingerprint, err := v.VerifyFile(payloadPath, sigPath)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%X", signer.PrimaryKey.Fingerprint), fingerprint)
}

func TestVerifyFile_TamperedPayload(t *testing.T) {
	keyring, payloadPath, sigPath, _ := signedFixture(t)
	require.NoError(t, os.WriteFile(payloadPath, []byte(`{"success":false}`), 0600))

	keys, err := LoadKeyring(keyring)
	require.NoError(t, err)

	_, err = NewVerifier(keys).VerifyFile(payloadPath, sigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature verification failed")
}

func TestVerifyFile_Errors(t *testing.T) {
	keyring, payloadPath, sigPath, _ := signedFixture(t)
	keys, err := LoadKeyring(keyring)
	require.NoError(t, err)
	v := NewVerifier(keys)

	_, err = v.VerifyFile(payloadPath, "/nonexistent.asc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open signature file")

	_, err = v.VerifyFile("/nonexistent.json", sigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open payload")

	empty := filepath.Join(t.TempDir(), "empty.asc")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	_, err = v.VerifyFile(payloadPath, empty)
	assert.Error(t, err)

	_, err = NewVerifier(nil).VerifyFile(payloadPath, sigPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no keys loaded")
}

func TestLoadKeyring_Errors(t *testing.T) {
	_, err := LoadKeyring("/nonexistent/keys.asc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open keyring")

	junk := filepath.Join(t.TempDir(), "junk.asc")
	require.NoError(t, os.WriteFile(junk, []byte("not a key"), 0600))
	_, err = LoadKeyring(junk)
	assert.Error(t, err)
}
