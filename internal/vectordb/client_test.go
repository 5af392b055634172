package vectordb

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		host string
		port int
		tls  bool
	}{
		{"http://localhost:6334", "localhost", 6334, false},
		{"localhost", "localhost", 6334, false},
		{"qdrant:7000", "qdrant", 7000, false},
		{"https://db.internal", "db.internal", 6334, true},
		{"xyz.eu-central.aws.cloud.qdrant.io:6334", "xyz.eu-central.aws.cloud.qdrant.io", 6334, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, port, tls, err := parseEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
			assert.Equal(t, tt.tls, tls)
		})
	}

	for _, bad := range []string{"", "http://", "localhost:port"} {
		_, _, _, err := parseEndpoint(bad)
		assert.Error(t, err, "parseEndpoint(%q)", bad)
	}
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "dotnet_runtime_labels", CollectionName("dotnet", "runtime"))
	assert.Equal(t, "myorg_myrepo_labels", CollectionName("MyOrg", "MyRepo"))
}

func TestToPointStruct(t *testing.T) {
	p := toPointStruct(Point{
		ID:     "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Label:  "area-net",
		Title:  "Socket leak",
		Kind:   "issue",
		Vector: []float32{0.1, 0.2},
	})

	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", p.Id.GetUuid())
	assert.Equal(t, "area-net", stringValue(p.Payload, payloadLabel))
	assert.Equal(t, "Socket leak", stringValue(p.Payload, payloadTitle))
	assert.Equal(t, "issue", stringValue(p.Payload, payloadKind))
	assert.Empty(t, stringValue(map[string]*qdrant.Value{}, payloadLabel))
}
