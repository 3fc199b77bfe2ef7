package studydrive

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

const (
	// BaseURL is the base URL of the Studydrive mobile-app gateway
	BaseURL = "https://gateway.production-01.studydrive.net"

	// WarmupURL is fetched once, unauthenticated, to pick up
	// session-level cookies before the auth handshake
	WarmupURL = "https://www.studydrive.net/app-api-version"

	// downloadSecret is the fixed shared secret the app mixes into
	// per-document download tokens
	downloadSecret = "studydrive-app-download-7>%jsc"

	// DefaultPlatform, DefaultBuild and DefaultUserAgent identify the
	// mobile client the gateway expects on every request
	DefaultPlatform  = "Android"
	DefaultBuild     = "773"
	DefaultUserAgent = "Studydrive/3.18.1 (com.studydrive.app; build:2019; iOS 17.2.1) Alamofire/5.4.4"
)

// seedKey is one label/key pair from the app's client-secret table
type seedKey struct {
	Label string
	Key   string
}

// seedKeys is the static table shipped in the app. Only the entry at
// activeSeedKey is ever used; the others are carried as configuration
// data to stay in sync with the app.
var seedKeys = []seedKey{
	{"*5b8v$c8D%&t4Nbf", "CBf&r8WTq#!GMWcKVDXaIkOvxI&bS@IRqadCtPe28MMd*QTA2T2g$*RjUnmbyfl7"},
	{"54qRT5W5&O!p1AC7", "c1Sv2Xz3IJy^#ljRKmgx#Sf$U1XKMAX4jVzVeS!^eHQP!sRxjjeK2msSt&0!X20Z"},
	{"84V*x5*x#z9xE7Ic", "eaDA1%7#@*5osw7&uoO176AE$t*dliy*YrXkev4zDQ9PX21808yD4!wVO8MDj7JX"},
	{"xOt#VgqVC^91e@@J", "lb7QjiGFczZwIlgpHtTb!fa6QkPF$wVXg43^kZt9434Cf%JpZU0SwHY1@SIiWnwe"},
	{"vxx!%uL0v!1c3@Mm", "C2@X%o3O$#$h*fLCZK*SJVjdp8uNJ%*NVj5NrsCNFZi8TZpDRJpWGJiEDG$BRjFD"},
}

const activeSeedKey = 0

// DownloadToken derives the download token for a document id: the hex
// md5 digest of the shared secret concatenated with the decimal id.
func DownloadToken(documentID int) string {
	sum := md5.Sum([]byte(downloadSecret + strconv.Itoa(documentID)))
	return hex.EncodeToString(sum[:])
}

// clientSecret derives the Sd-Client-Secret header value from a server
// seed: sha256 of seed+key, a literal period, then the key's label.
func clientSecret(seed string) string {
	pair := seedKeys[activeSeedKey]
	sum := sha256.Sum256([]byte(seed + pair.Key))
	return hex.EncodeToString(sum[:]) + "." + pair.Label
}

// SeedURL returns the URL of the one-time seed endpoint
func SeedURL(baseURL string) string {
	return baseURL + "/auth/v1/seed"
}

// LoginURL returns the URL of the credential login endpoint
func LoginURL(baseURL string) string {
	return baseURL + "/users/v1/auth/login"
}

// FeedURL returns the URL of a course's paginated document feed
func FeedURL(baseURL string, courseID int) string {
	return fmt.Sprintf("%s/legacy-api/v1/feed/courses/%d/documents", baseURL, courseID)
}

// DownloadURL returns the URL of a document's download endpoint
func DownloadURL(baseURL string, documentID int) string {
	return fmt.Sprintf("%s/legacy-api/v1/documents/%d/download", baseURL, documentID)
}
