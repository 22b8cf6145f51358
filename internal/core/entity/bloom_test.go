package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilter_ContainsAllSeededElements(t *testing.T) {
	releasable := []string{"did:prism:ACME", "did:prism:TECHCORP", "did:prism:GLOBEX"}
	f := NewBloomFilter(releasable)

	for _, d := range releasable {
		assert.True(t, f.Contains(d), "seeded element %q must be reported present", d)
	}
}

func TestBloomFilter_FalsePositiveRateBelowOnePercent(t *testing.T) {
	releasable := []string{"did:prism:ACME"}
	f := NewBloomFilter(releasable)

	const trials = 10000
	falsePositives := 0
	for i := 0; i < trials; i++ {
		candidate := fmt.Sprintf("did:prism:not-a-member-%d", i)
		if f.Contains(candidate) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / float64(trials)
	assert.Less(t, rate, 0.01, "false-positive rate %f exceeds the spec.md §8 1%% bound", rate)
}
