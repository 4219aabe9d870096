// Package cluster groups signals judged topically similar. Clusters are the unit
// of work for gap detection and FAQ generation.
package cluster

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/JaimeStill/lacuna/internal/signals"
)

// Clusterer groups signals by topic. Implementations must be deterministic:
// the same input yields the same keys regardless of input order.
type Clusterer interface {
	Cluster(sigs []signals.Signal) []Cluster
}

// Cluster is a group of similar signals sharing a stable topic key.
type Cluster struct {
	ID      string           `json:"id"`
	Key     string           `json:"key"`
	Label   string           `json:"label"`
	Signals []signals.Signal `json:"signals"`
}

// New builds a cluster with an ID derived from key.
func New(key, label string, sigs []signals.Signal) Cluster {
	return Cluster{
		ID:      ID(key),
		Key:     key,
		Label:   label,
		Signals: sigs,
	}
}

// ID returns the stable cluster identifier for a topic key.
func ID(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}

// Weight is the sum of signal weights.
func (c Cluster) Weight() int {
	var n int
	for _, s := range c.Signals {
		n += s.Weight
	}
	return n
}

// Newest returns the latest signal timestamp, or the zero time for an empty cluster.
func (c Cluster) Newest() time.Time {
	var t time.Time
	for _, s := range c.Signals {
		if s.Timestamp.After(t) {
			t = s.Timestamp
		}
	}
	return t
}

// HasSource reports whether any signal came from src.
func (c Cluster) HasSource(src signals.Source) bool {
	for _, s := range c.Signals {
		if s.Source == src {
			return true
		}
	}
	return false
}

// BySource returns the signals that came from src, preserving order.
func (c Cluster) BySource(src signals.Source) []signals.Signal {
	var out []signals.Signal
	for _, s := range c.Signals {
		if s.Source == src {
			out = append(out, s)
		}
	}
	return out
}

// Representative returns the heaviest signal, preferring the earliest on ties.
func Representative(sigs []signals.Signal) (signals.Signal, bool) {
	if len(sigs) == 0 {
		return signals.Signal{}, false
	}
	best := sigs[0]
	for _, s := range sigs[1:] {
		if s.Weight > best.Weight {
			best = s
		}
	}
	return best, true
}
