package grantsingest

import (
	"testing"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledEventGrantsURL(t *testing.T) {
	estTZ := time.FixedZone("America/New_York", -5*3600)

	assert.Equal(t, "https://example.gov/extract/GrantsDBExtract20230102v2.zip",
		ScheduledEvent{time.Date(2023, 1, 2, 3, 4, 5, 6, estTZ)}.GrantsURL("https://example.gov"))
	assert.Equal(t, "https://example.gov/extract/GrantsDBExtract20230203v2.zip",
		ScheduledEvent{time.Date(2023, 2, 3, 4, 5, 6, 7, time.UTC)}.GrantsURL("https://example.gov/"))
	assert.Equal(t, "https://example.gov/extract/GrantsDBExtract20231112v2.zip",
		ScheduledEvent{time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC)}.GrantsURL("https://example.gov"))
}

func TestScheduledEventDestinationKey(t *testing.T) {
	estTZ := time.FixedZone("America/New_York", -5*3600)

	assert.Equal(t, "sources/2023/01/02/grants.gov/archive.zip",
		ScheduledEvent{time.Date(2023, 1, 2, 3, 4, 5, 6, estTZ)}.DestinationKey())
	assert.Equal(t, "sources/2023/02/03/grants.gov/archive.zip",
		ScheduledEvent{time.Date(2023, 2, 3, 4, 5, 6, 7, time.UTC)}.DestinationKey())
	assert.Equal(t, "sources/2023/11/12/grants.gov/archive.zip",
		ScheduledEvent{time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC)}.DestinationKey())
}

func TestExtractKey(t *testing.T) {
	assert.Equal(t, "sources/2023/01/02/grants.gov/extract.xml", ExtractKey("sources/2023/01/02/grants.gov/archive.zip"))
}

func TestParseEnvironment(t *testing.T) {
	e, err := ParseEnvironment(env.EnvSet{
		"GRANTS_SOURCE_DATA_BUCKET_NAME": "source-data",
		"S3_USE_PATH_STYLE":              "true",
		"GRANTS_GOV_BASE_URL":            "https://example.gov",
	})
	require.NoError(t, err)
	assert.Equal(t, "source-data", e.Bucket)
	assert.True(t, e.UsePathStyle)
	assert.Equal(t, "info", e.LogLevel)
	assert.Equal(t, 15*time.Minute, e.DownloadTimeout())
	assert.NoError(t, e.RequireBaseURL())
}

func TestParseEnvironmentRequiresBucket(t *testing.T) {
	_, err := ParseEnvironment(env.EnvSet{"GRANTS_GOV_BASE_URL": "https://example.gov"})
	assert.Error(t, err)
}

func TestRequireBaseURL(t *testing.T) {
	e, err := ParseEnvironment(env.EnvSet{"GRANTS_SOURCE_DATA_BUCKET_NAME": "source-data"})
	require.NoError(t, err)
	assert.Error(t, e.RequireBaseURL())
}
