package photo

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// Digests holds the two content fingerprints stored with every photo.
// MD5 drives the per-user duplicate check; SHA256 is kept for integrity
// verification.
type Digests struct {
	MD5    string
	SHA256 string
}

func ComputeDigests(data []byte) Digests {
	md5Sum := md5.Sum(data)
	shaSum := sha256.Sum256(data)
	return Digests{
		MD5:    hex.EncodeToString(md5Sum[:]),
		SHA256: hex.EncodeToString(shaSum[:]),
	}
}
