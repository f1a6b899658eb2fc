package boxmeta_test

import (
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "name": "hashicorp/bionic64",
  "versions": [
    { "version": "1.0.0",
      "providers": [
        { "name": "virtualbox", "url": "https://example.com/1.0.0/virtualbox.box", "checksum_type": "sha256", "checksum": "abc" }
      ] }
  ]
}`

func TestIsMetadataByContentType(t *testing.T) {
	assert.True(t, boxmeta.IsMetadata("application/json", nil))
	assert.True(t, boxmeta.IsMetadata("application/json; charset=utf-8", nil))
}

func TestIsMetadataByBodySniff(t *testing.T) {
	assert.True(t, boxmeta.IsMetadata("", []byte(sampleDoc)))
	assert.False(t, boxmeta.IsMetadata("", []byte("not json at all")))
}

func TestIsMetadataArchiveContentType(t *testing.T) {
	assert.False(t, boxmeta.IsMetadata("application/octet-stream", []byte(sampleDoc)))
}

func TestParseValidDocument(t *testing.T) {
	doc, err := boxmeta.Parse([]byte(sampleDoc))
	require.NoError(t, err)
	assert.Equal(t, "hashicorp/bionic64", doc.Name)
	require.Len(t, doc.Versions, 1)
	assert.Equal(t, "1.0.0", doc.Versions[0].Version)
	require.Len(t, doc.Versions[0].Providers, 1)
	assert.Equal(t, "virtualbox", doc.Versions[0].Providers[0].Name)
}

func TestParseMissingName(t *testing.T) {
	_, err := boxmeta.Parse([]byte(`{"versions":[{"version":"1.0.0","providers":[]}]}`))
	assert.Error(t, err)
}

func TestParseMissingVersions(t *testing.T) {
	_, err := boxmeta.Parse([]byte(`{"name":"hashicorp/bionic64"}`))
	assert.Error(t, err)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := boxmeta.Parse([]byte("not json"))
	assert.Error(t, err)
}
