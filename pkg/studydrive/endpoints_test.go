package studydrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadToken(t *testing.T) {
	// hex md5 of the shared secret plus the decimal document id
	assert.Equal(t, "dee1f5f3ae208ba8082b2302d7be7f8a", DownloadToken(10))
	assert.Equal(t, "fdac79dbf5a6490352c85d703dc60f32", DownloadToken(4821))

	// Deterministic: same id, same token
	assert.Equal(t, DownloadToken(10), DownloadToken(10))
	assert.NotEqual(t, DownloadToken(10), DownloadToken(11))
}

func TestClientSecret(t *testing.T) {
	secret := clientSecret("test-seed")

	// sha256(seed + key), a period, then the key's label
	assert.Equal(t,
		"d6e56d29ca7e91b256631fb07e75e62f6684393dc2c81ca4d59bc6435fad664b.*5b8v$c8D%&t4Nbf",
		secret)
}

func TestSeedKeyTable(t *testing.T) {
	// The app ships five pairs; only the first is live. The rest are
	// kept verbatim as configuration data.
	assert.Len(t, seedKeys, 5)
	assert.Equal(t, 0, activeSeedKey)
	assert.Equal(t, "*5b8v$c8D%&t4Nbf", seedKeys[activeSeedKey].Label)
}

func TestEndpointURLs(t *testing.T) {
	base := "https://gateway.example.org"

	assert.Equal(t, "https://gateway.example.org/auth/v1/seed", SeedURL(base))
	assert.Equal(t, "https://gateway.example.org/users/v1/auth/login", LoginURL(base))
	assert.Equal(t, "https://gateway.example.org/legacy-api/v1/feed/courses/4821/documents", FeedURL(base, 4821))
	assert.Equal(t, "https://gateway.example.org/legacy-api/v1/documents/10/download", DownloadURL(base, 10))
}
