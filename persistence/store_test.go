package persistence

import (
	"crypto/ed25519"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lcslab/go-elcs/elcs"
)

func sampleSnapshot() elcs.Snapshot {
	v := 1.0
	return elcs.Snapshot{
		Hyper:        elcs.DefaultHyperparameters(),
		Schema:       elcs.FormatData{NumAttributes: 1, Attributes: []elcs.AttributeInfo{{Kind: elcs.Discrete}}},
		PopSet:       []elcs.Classifier{{SpecifiedAttList: []int{0}, Condition: []elcs.CondElem{{Disc: &v}}, Phenotype: elcs.PhenotypeValue{Disc: &v}}},
		MicroPopSize: 1,
	}
}

// StoreSuite covers signing/verification and the on-disk FileStore
// round-trip, including across independently constructed stores.
type StoreSuite struct {
	suite.Suite
}

func (s *StoreSuite) TestSignVerifyRoundTrip() {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(s.T(), err)
	snap := sampleSnapshot()

	payload, sig, err := Sign(priv, snap)
	require.NoError(s.T(), err)
	got, err := Verify(pub, payload, sig)
	require.NoError(s.T(), err)
	require.Equal(s.T(), snap.MicroPopSize, got.MicroPopSize)
}

func (s *StoreSuite) TestVerifyRejectsTamperedPayload() {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(s.T(), err)
	payload, sig, err := Sign(priv, sampleSnapshot())
	require.NoError(s.T(), err)
	payload[0] ^= 0xFF

	_, err = Verify(pub, payload, sig)
	require.ErrorIs(s.T(), err, ErrAuth)
}

func (s *StoreSuite) TestFileStoreSaveLoadRoundTrip() {
	dir := s.T().TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "snapshot.bin"))
	require.NoError(s.T(), err)

	snap := sampleSnapshot()
	require.NoError(s.T(), fs.Save(snap))

	got, err := fs.Load()
	require.NoError(s.T(), err)
	require.Equal(s.T(), snap.MicroPopSize, got.MicroPopSize)
	require.Len(s.T(), got.PopSet, len(snap.PopSet))
}

// TestFileStoreCrossProcessRoundTrip mirrors the train-then-predict/serve
// workflow: a snapshot written by one FileStore instance must verify when
// loaded by a second, independently constructed FileStore pointed at the
// same path, the way two separate CLI invocations would.
func (s *StoreSuite) TestFileStoreCrossProcessRoundTrip() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "snapshot.bin")

	writer, err := NewFileStore(path)
	require.NoError(s.T(), err)
	snap := sampleSnapshot()
	require.NoError(s.T(), writer.Save(snap))

	reader, err := NewFileStore(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), writer.Pub, reader.Pub, "a second FileStore over the same path must reuse the persisted keypair")

	got, err := reader.Load()
	require.NoError(s.T(), err)
	require.Equal(s.T(), snap.MicroPopSize, got.MicroPopSize)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
