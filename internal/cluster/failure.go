package cluster

// FailureKind classifies why a cluster produced no record.
type FailureKind string

const (
	FailureGeneration FailureKind = "generation"
	FailureTimeout    FailureKind = "timeout"
	FailureStorage    FailureKind = "storage"
	FailureCanceled   FailureKind = "canceled"
)

// Failure reports a cluster that did not produce a record.
type Failure struct {
	ClusterID string      `json:"cluster_id"`
	Topic     string      `json:"topic"`
	Kind      FailureKind `json:"kind"`
	Reason    string      `json:"reason"`
}

// NewFailure builds a Failure for c from err.
func NewFailure(c Cluster, kind FailureKind, err error) Failure {
	f := Failure{
		ClusterID: c.ID,
		Topic:     c.Key,
		Kind:      kind,
	}
	if err != nil {
		f.Reason = err.Error()
	}
	return f
}
