// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple title", input: "Hybrid Workplace", expected: "hybrid-workplace"},
		{name: "accented characters", input: "Café Culture", expected: "cafe-culture"},
		{name: "punctuation", input: "What's new? (2026 edition)", expected: "what-s-new-2026-edition"},
		{name: "repeated separators", input: "a  --  b", expected: "a-b"},
		{name: "leading and trailing junk", input: "  ...Policy Corner!  ", expected: "policy-corner"},
		{name: "already a slug", input: "digital-services", expected: "digital-services"},
		{name: "only symbols", input: "!!!", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, From(tc.input))
		})
	}
}
