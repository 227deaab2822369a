package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardFilesBalancedRoundRobin(t *testing.T) {
	files := []string{"a.go", "b.go", "c.go", "d.go"}
	shards := ShardFiles(files, 2)
	assert.Equal(t, [][]string{{"a.go", "c.go"}, {"b.go", "d.go"}}, shards)
}

func TestShardFilesBackfillsEmptyShards(t *testing.T) {
	files := []string{"a.go"}
	shards := ShardFiles(files, 2)
	assert.Equal(t, [][]string{{"a.go"}, {"a.go"}}, shards)
}

func TestShardFilesNoFilesStillBackfillsNothing(t *testing.T) {
	shards := ShardFiles(nil, 2)
	assert.Equal(t, [][]string{nil, nil}, shards)
}
