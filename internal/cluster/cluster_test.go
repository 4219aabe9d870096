package cluster_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/JaimeStill/lacuna/internal/cluster"
	"github.com/JaimeStill/lacuna/internal/signals"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sig(text, hint string, src signals.Source, offset time.Duration) signals.Signal {
	return signals.Signal{
		Text:        text,
		TopicHint:   hint,
		Source:      src,
		Timestamp:   base.Add(offset),
		Weight:      1,
		Fingerprint: cluster.ID(text + hint + offset.String()),
	}
}

func TestClusterByHint(t *testing.T) {
	sigs := []signals.Signal{
		sig("password reset link expired", "auth", signals.SourceSupportTicket, 0),
		sig("forgot password", "auth", signals.SourceSearchQuery, time.Minute),
		sig("invoice total wrong", "billing", signals.SourceSupportTicket, 2*time.Minute),
	}

	got := cluster.NewTopicClusterer(0).Cluster(sigs)
	if len(got) != 2 {
		t.Fatalf("clusters = %d, want 2", len(got))
	}

	auth := got[0]
	if auth.Key != "auth" || len(auth.Signals) != 2 {
		t.Errorf("auth cluster = %s with %d signals", auth.Key, len(auth.Signals))
	}
	if auth.ID != cluster.ID("auth") {
		t.Errorf("cluster id not derived from key")
	}
	if !auth.HasSource(signals.SourceSearchQuery) || !auth.HasSource(signals.SourceSupportTicket) {
		t.Error("auth cluster should carry both sources")
	}
	if n := len(auth.BySource(signals.SourceSupportTicket)); n != 1 {
		t.Errorf("tickets = %d, want 1", n)
	}
}

func TestClusterByTokenSimilarity(t *testing.T) {
	sigs := []signals.Signal{
		sig("How do I reset my password", "", signals.SourceSearchQuery, 0),
		sig("password reset email never arrives", "", signals.SourceSupportTicket, time.Minute),
		sig("export report to csv", "", signals.SourceSearchQuery, 2*time.Minute),
	}

	got := cluster.NewTopicClusterer(cluster.DefaultThreshold).Cluster(sigs)
	if len(got) != 2 {
		t.Fatalf("clusters = %d, want 2: %+v", len(got), got)
	}

	var reset cluster.Cluster
	for _, c := range got {
		if c.Key == "password-reset" {
			reset = c
		}
	}
	if len(reset.Signals) != 2 {
		t.Errorf("password-reset cluster has %d signals, want 2", len(reset.Signals))
	}
}

func TestClusterDeterministic(t *testing.T) {
	sigs := []signals.Signal{
		sig("reset password", "", signals.SourceSearchQuery, 0),
		sig("billing invoice", "", signals.SourceSearchQuery, time.Minute),
		sig("password reset broken", "", signals.SourceSupportTicket, 2*time.Minute),
		sig("sso login", "auth", signals.SourceSupportTicket, 3*time.Minute),
	}

	c := cluster.NewTopicClusterer(0)
	first := keys(c.Cluster(sigs))

	reversed := slices.Clone(sigs)
	slices.Reverse(reversed)
	second := keys(c.Cluster(reversed))

	if !slices.Equal(first, second) {
		t.Errorf("keys differ by input order: %v vs %v", first, second)
	}
}

func TestClusterEmpty(t *testing.T) {
	if got := cluster.NewTopicClusterer(0).Cluster(nil); len(got) != 0 {
		t.Errorf("clusters = %d, want 0", len(got))
	}
}

func TestClusterWeightAndNewest(t *testing.T) {
	a := sig("a", "x", signals.SourceSearchQuery, 0)
	a.Weight = 5
	b := sig("b", "x", signals.SourceSupportTicket, time.Hour)

	c := cluster.New("x", "x", []signals.Signal{a, b})
	if c.Weight() != 6 {
		t.Errorf("weight = %d, want 6", c.Weight())
	}
	if !c.Newest().Equal(base.Add(time.Hour)) {
		t.Errorf("newest = %v", c.Newest())
	}

	rep, ok := cluster.Representative(c.Signals)
	if !ok || rep.Text != "a" {
		t.Errorf("representative = %q, want a", rep.Text)
	}
	if _, ok := cluster.Representative(nil); ok {
		t.Error("representative of empty set should report false")
	}
}

func TestTokens(t *testing.T) {
	got := cluster.Tokens("How do I reset my Passwords? (SSO access)")
	want := []string{"reset", "password", "sso", "access"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestNewFailure(t *testing.T) {
	c := cluster.New("auth", "auth", nil)
	f := cluster.NewFailure(c, cluster.FailureTimeout, errors.New("deadline"))

	if f.ClusterID != c.ID || f.Topic != "auth" || f.Kind != cluster.FailureTimeout || f.Reason != "deadline" {
		t.Errorf("failure = %+v", f)
	}
}

func keys(cs []cluster.Cluster) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Key
	}
	return out
}
