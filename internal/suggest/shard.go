package suggest

// Worker roles the pipeline dispatches to the agentic loop. Two
// complementary roles is the documented typical case, but ShardFiles
// supports any worker count.
const (
	RoleBugHunter        = "bug_hunter"
	RoleSecurityReviewer = "security_reviewer"
)

// DefaultRoles is the typical two-worker configuration.
func DefaultRoles() []string {
	return []string{RoleBugHunter, RoleSecurityReviewer}
}

// ShardFiles distributes files across workerCount virtual workers in
// balanced round-robin order, then backfills any shard left empty (which
// happens whenever len(files) < workerCount) with the lead files — the
// highest-ranked entries, so no worker starts with nothing to look at.
// files is assumed already ranked highest-priority first (see RankFiles).
func ShardFiles(files []string, workerCount int) [][]string {
	if workerCount <= 0 {
		return nil
	}
	shards := make([][]string, workerCount)
	for i, f := range files {
		w := i % workerCount
		shards[w] = append(shards[w], f)
	}

	leadCount := workerCount
	if leadCount > len(files) {
		leadCount = len(files)
	}
	lead := files[:leadCount]

	for i := range shards {
		if len(shards[i]) == 0 && len(lead) > 0 {
			shards[i] = append(shards[i], lead...)
		}
	}
	return shards
}
