package torrentfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMagnetStringRoundTrips(t *testing.T) {
	m := Magnet{
		Name:     "My Movie",
		InfoHash: "abababababababababababababababababababab"[:40],
		Trackers: []string{"udp://tracker.example:80/announce"},
	}

	uri := m.String()
	parsed, err := ParseMagnetUri(uri)
	require.NoError(t, err)
	require.Equal(t, m.InfoHash, parsed.InfoHash)
	require.Equal(t, m.Name, parsed.Name)
	require.Equal(t, m.Trackers, parsed.Trackers)
}

func TestParseMagnetUriRejectsNonMagnet(t *testing.T) {
	_, err := ParseMagnetUri("https://example.com/file.torrent")
	require.Error(t, err)
}

func TestParseMagnetUriRequiresBtih(t *testing.T) {
	_, err := ParseMagnetUri("magnet:?dn=no-hash-here")
	require.ErrorIs(t, err, errNoInfoHash)
}

func TestParseMagnetUriLowercasesHash(t *testing.T) {
	parsed, err := ParseMagnetUri("magnet:?xt=urn:btih:ABCDEF0123ABCDEF0123ABCDEF0123ABCDEF0123")
	require.NoError(t, err)
	require.Equal(t, "abcdef0123abcdef0123abcdef0123abcdef0123", parsed.InfoHash)
}
