package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearestName(t *testing.T) {
	candidates := []string{"value", "trigger", "output"}

	tests := []struct {
		name      string
		target    string
		wantName  string
		wantFound bool
	}{
		{name: "close typo matches", target: "valeu", wantName: "value", wantFound: true},
		{name: "case differs but still close", target: "VALUE", wantName: "value", wantFound: true},
		{name: "too far from any candidate", target: "zzzzzzzzzz", wantFound: false},
		{name: "no candidates", target: "value", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := candidates
			if tt.name == "no candidates" {
				cs = nil
			}
			got, found := nearestName(tt.target, cs)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantName, got)
			}
		})
	}
}
