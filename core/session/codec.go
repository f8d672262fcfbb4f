package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	salt = []byte("serene.core.session.codec")

	// ErrCorrupt is returned when sealed data cannot be opened.
	ErrCorrupt = errors.New("corrupt session data")
)

const nonceLen = 24

// Codec seals records for byte-oriented storages: JSON in a secretbox keyed from the app secret.
type Codec struct {
	key [32]byte
}

func NewCodec(secret string) *Codec {
	return &Codec{key: sha256.Sum256(append(append([]byte{}, salt...), secret...))}
}

func (c *Codec) Seal(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling record")
	}
	var nonce [nonceLen]byte
	if _, err = io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}
	return secretbox.Seal(nonce[:], data, &nonce, &c.key), nil
}

func (c *Codec) Open(sealed []byte) (Record, error) {
	if len(sealed) < nonceLen+secretbox.Overhead {
		return Record{}, ErrCorrupt
	}
	var nonce [nonceLen]byte
	copy(nonce[:], sealed[:nonceLen])
	data, ok := secretbox.Open(nil, sealed[nonceLen:], &nonce, &c.key)
	if !ok {
		return Record{}, ErrCorrupt
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, ErrCorrupt
	}
	return rec, nil
}
