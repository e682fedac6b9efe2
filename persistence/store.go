// Package persistence implements a narrow, format-opaque Store contract that
// snapshot/reboot delegates to. It follows a domain-tag signing idiom
// (ed25519 over domainTag||0x00||payload), swapping protobuf-canonicalized
// bytes for encoding/gob-encoded bytes since no generated protobuf type
// exists for an elcs.Snapshot.
package persistence

import (
	"bytes"
	"crypto/ed25519"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/lcslab/go-elcs/elcs"
)

// ErrAuth is returned when a loaded snapshot's signature does not verify.
var ErrAuth = errors.New("persistence: signature verification failed")

// domainTag separates elcs snapshot signatures from any other protocol that
// might reuse the same keypair.
const domainTag = "GO-ELCS-SNAPSHOT-V1"

func addDomain(b []byte) []byte {
	out := make([]byte, 0, len(domainTag)+1+len(b))
	out = append(out, domainTag...)
	out = append(out, 0)
	out = append(out, b...)
	return out
}

// CanonicalBytes gob-encodes snap deterministically: gob always writes
// struct fields in declaration order, giving the same byte-for-byte
// stability that proto.MarshalOptions{Deterministic: true} would.
func CanonicalBytes(snap elcs.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sign returns snap's canonical bytes and its ed25519 signature, bound to
// the domain tag.
func Sign(priv ed25519.PrivateKey, snap elcs.Snapshot) (payload, sig []byte, err error) {
	payload, err = CanonicalBytes(snap)
	if err != nil {
		return nil, nil, err
	}
	return payload, ed25519.Sign(priv, addDomain(payload)), nil
}

// Verify checks sig against payload and, on success, decodes payload into a
// Snapshot.
func Verify(pub ed25519.PublicKey, payload, sig []byte) (elcs.Snapshot, error) {
	if !ed25519.Verify(pub, addDomain(payload), sig) {
		return elcs.Snapshot{}, ErrAuth
	}
	var snap elcs.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&snap); err != nil {
		return elcs.Snapshot{}, err
	}
	return snap, nil
}

// file is the on-disk envelope: payload + detached signature, gob-encoded.
// The format is opaque to elcs's core — only this package interprets it.
type file struct {
	Payload []byte
	Sig     []byte
}

// FileStore persists snapshots to a single signed file on disk.
type FileStore struct {
	Path string
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
}

// keyPath is where NewFileStore persists the ed25519 seed for path, so that
// separate processes opening the same snapshot path (train, then predict or
// serve) sign and verify with the same keypair instead of each minting its
// own.
func keyPath(path string) string { return path + ".key" }

// NewFileStore returns a FileStore for path, keyed by the ed25519 keypair
// already persisted at keyPath(path), or by a freshly generated one
// (persisted for next time) if none exists yet. Callers that need a
// different identity scheme should construct a FileStore literal directly.
func NewFileStore(path string) (*FileStore, error) {
	kp := keyPath(path)
	seed, err := os.ReadFile(kp)
	switch {
	case err == nil:
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("persistence: key file %s has unexpected length %d", kp, len(seed))
		}
		priv := ed25519.NewKeyFromSeed(seed)
		return &FileStore{Path: path, Priv: priv, Pub: priv.Public().(ed25519.PublicKey)}, nil
	case os.IsNotExist(err):
		pub, priv, genErr := ed25519.GenerateKey(nil)
		if genErr != nil {
			return nil, genErr
		}
		if writeErr := os.WriteFile(kp, priv.Seed(), 0o600); writeErr != nil {
			return nil, writeErr
		}
		return &FileStore{Path: path, Priv: priv, Pub: pub}, nil
	default:
		return nil, err
	}
}

// Save signs and writes snap to fs.Path.
func (fs *FileStore) Save(snap elcs.Snapshot) error {
	payload, sig, err := Sign(fs.Priv, snap)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(file{Payload: payload, Sig: sig}); err != nil {
		return err
	}
	return os.WriteFile(fs.Path, buf.Bytes(), 0o600)
}

// Load reads and verifies the snapshot at fs.Path.
func (fs *FileStore) Load() (elcs.Snapshot, error) {
	raw, err := os.ReadFile(fs.Path)
	if err != nil {
		return elcs.Snapshot{}, err
	}
	var f file
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&f); err != nil {
		return elcs.Snapshot{}, err
	}
	return Verify(fs.Pub, f.Payload, f.Sig)
}
