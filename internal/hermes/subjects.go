package hermes

const (
	SubjectRankRequest = "ranker.rank.request"
)

// Event subjects take the ranker-generated event id, never a caller-supplied value.
func SubjectRankCompleted(id string) string { return "ranker.rank." + id + ".completed" }
func SubjectRankRejected(id string) string  { return "ranker.rank." + id + ".rejected" }
