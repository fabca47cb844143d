package report

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/shellpure/shellpure/pkgs/errors"
)

// canonical CBOR keeps the fingerprint independent of map ordering and
// encoder defaults across versions
var canonicalEnc cbor.EncMode

func init() {
	var err error
	canonicalEnc, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// Encode serializes the report in canonical CBOR
func (r *Report) Encode() ([]byte, error) {
	data, err := canonicalEnc.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrReportEncoding, "encoding report as CBOR", err)
	}
	return data, nil
}

// Fingerprint returns a stable hex digest of the report. Two runs over
// the same input yield the same fingerprint, which CI can use to
// detect drift.
func (r *Report) Fingerprint() (string, error) {
	data, err := r.Encode()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
