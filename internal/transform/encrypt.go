package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vishalvchavan/streamsmt/internal/events"
	"github.com/vishalvchavan/streamsmt/internal/tree"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

const (
	nonceSize = 12
	keySize   = 32
)

// KeyStore is the process-wide, concurrent encryption-helper cache of
// spec §5, keyed by the resolved key text (after ${NAME} substitution) so
// two field specs sharing a key reference share one cipher.AEAD.
type KeyStore struct {
	helpers sync.Map // map[string]cipher.AEAD
}

// NewKeyStore returns an empty KeyStore.
func NewKeyStore() *KeyStore {
	return &KeyStore{}
}

var (
	errMissingKeyRef = engerrors.New(engerrors.EInvalid, "encrypt transform has no configured key reference")
)

// resolveKeyRef turns a configured key reference into its literal
// base64-encoded key text: either the literal text itself, or, for a
// "${NAME}" placeholder, the value of the named environment variable.
func resolveKeyRef(keyRef string) (string, error) {
	if keyRef == "" {
		return "", errMissingKeyRef
	}
	if strings.HasPrefix(keyRef, "${") && strings.HasSuffix(keyRef, "}") {
		name := strings.TrimSuffix(strings.TrimPrefix(keyRef, "${"), "}")
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", engerrors.New(engerrors.ENotFound, "environment variable %q referenced by encrypt transform is not set", name)
		}
		return val, nil
	}
	return keyRef, nil
}

func (ks *KeyStore) resolve(keyRef string) (cipher.AEAD, error) {
	resolved, err := resolveKeyRef(keyRef)
	if err != nil {
		return nil, err
	}

	if v, ok := ks.helpers.Load(resolved); ok {
		return v.(cipher.AEAD), nil
	}

	keyBytes, err := base64.StdEncoding.DecodeString(resolved)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInvalid, "encrypt transform key material is not valid base64")
	}
	if len(keyBytes) != keySize {
		return nil, engerrors.New(engerrors.EInvalid, "encrypt transform key material must decode to %d bytes, got %d", keySize, len(keyBytes))
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInvalid, "failed to initialize AES cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, engerrors.Wrap(err, engerrors.EInvalid, "failed to initialize AES-GCM")
	}

	actual, _ := ks.helpers.LoadOrStore(resolved, gcm)
	return actual.(cipher.AEAD), nil
}

// applyEncrypt implements spec §4.3 "encrypt": null stays null, arrays
// recurse element-wise, and otherwise the value is coerced to text and
// sealed into a base64 envelope of 12-byte nonce || ciphertext || 16-byte
// tag. A missing key reference passes the value through with a warning;
// an unresolvable environment-variable placeholder passes it through with
// an error event; neither aborts the record.
func applyEncrypt(d Descriptor, val tree.Node, fieldName string, sink events.Sink, keys *KeyStore, onSoftFailure func(kind Kind)) tree.Node {
	switch val.Kind() {
	case tree.KindMissing, tree.KindNull:
		return val
	case tree.KindArray:
		elems := val.ArrayValue()
		out := make([]tree.Node, len(elems))
		for i, el := range elems {
			out[i] = applyEncrypt(d, el, fieldName, sink, keys, onSoftFailure)
		}
		return tree.Array(out)
	}

	text := coerceToText(val)

	if keys == nil || d.KeyRef == "" {
		if onSoftFailure != nil {
			onSoftFailure(Encrypt)
		}
		if sink != nil {
			sink.Emit(events.New(events.SeverityWarn, "transform-soft-failure", fieldName, "encrypt transform has no key reference configured; passing value through"))
		}
		return tree.Text(text)
	}

	gcm, err := keys.resolve(d.KeyRef)
	if err != nil {
		severity := events.SeverityError
		if errEquals(err, errMissingKeyRef) {
			severity = events.SeverityWarn
		}
		if onSoftFailure != nil {
			onSoftFailure(Encrypt)
		}
		if sink != nil {
			sink.Emit(events.New(severity, "transform-soft-failure", fieldName, "encrypt transform could not resolve key reference: %v", err))
		}
		return tree.Text(text)
	}

	sealed, err := seal(gcm, text)
	if err != nil {
		if onSoftFailure != nil {
			onSoftFailure(Encrypt)
		}
		if sink != nil {
			sink.Emit(events.New(events.SeverityError, "transform-soft-failure", fieldName, "encrypt transform failed: %v", err))
		}
		return tree.Text(text)
	}

	return tree.Text(sealed)
}

func seal(gcm cipher.AEAD, plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	envelope := append(nonce, ciphertext...)
	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Decrypt reverses seal, used by tests and by any host that needs to read
// encrypted values back (spec §8 "encrypt ∘ decrypt ≡ identity").
func Decrypt(keys *KeyStore, keyRef, envelope string) (string, error) {
	gcm, err := keys.resolve(keyRef)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", engerrors.Wrap(err, engerrors.EInvalid, "envelope is not valid base64")
	}
	if len(raw) < nonceSize {
		return "", engerrors.New(engerrors.EInvalid, "envelope shorter than nonce size")
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", engerrors.Wrap(err, engerrors.EInvalid, "failed to authenticate/decrypt envelope")
	}
	return string(plaintext), nil
}

func coerceToText(val tree.Node) string {
	if val.Kind() == tree.KindText {
		return val.TextValue()
	}
	return val.AsStringForComparison()
}

func errEquals(err, target error) bool {
	return err != nil && target != nil && err.Error() == target.Error()
}
