package pruner

import (
	"time"

	"github.com/FairwindsOps/index-pruner/pkg/retention"
)

// Options configures the pruner behavior.
type Options struct {
	// URL is the base URL of the Elasticsearch/OpenSearch cluster.
	URL string

	// Username and Password enable basic auth. Both or neither must be set.
	Username string
	Password string

	// Timeout is the per-request timeout against the cluster.
	// 0 means the client default (30s).
	Timeout time.Duration

	// IndexPrefix selects the indices to consider, e.g. "zis-audit-".
	IndexPrefix string

	// OlderThanMonths is the minimum age, in months, of an index to be deleted.
	OlderThanMonths int

	// DatePattern is the naming convention of the date fragment after the prefix.
	DatePattern retention.Convention

	// DeleteRateLimit is the minimum duration to wait between delete operations.
	// 0 means no rate limiting.
	DeleteRateLimit time.Duration

	// PushgatewayURL, when set, receives the run metrics once the run is over.
	PushgatewayURL string

	// DryRun shows what would be deleted without actually deleting.
	DryRun bool

	// Debug enables verbose logging.
	Debug bool
}
