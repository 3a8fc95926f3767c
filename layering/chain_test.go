package layering

import (
	"reflect"
	"testing"
)

func TestNewChainOrdering(t *testing.T) {
	cases := []struct {
		name       string
		priorities []string
		expect     []string
	}{
		{name: "empty", priorities: nil, expect: []string{""}},
		{name: "single", priorities: []string{"cs"}, expect: []string{"cs", ""}},
		{name: "keeps order", priorities: []string{"test", "dev"}, expect: []string{"test", "dev", ""}},
		{name: "drops duplicates", priorities: []string{"dev", "test", "dev"}, expect: []string{"dev", "test", ""}},
		{name: "moves default last", priorities: []string{"", "dev"}, expect: []string{"dev", ""}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			chain := NewChain(tc.priorities...)
			if got := chain.Ordered(); !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("unexpected chain\nwant: %#v\n got: %#v", tc.expect, got)
			}
			if chain.Head() != tc.expect[0] {
				t.Fatalf("expected head %q, got %q", tc.expect[0], chain.Head())
			}
			if chain.Len() != len(tc.expect) {
				t.Fatalf("expected len %d, got %d", len(tc.expect), chain.Len())
			}
		})
	}
}

func TestZeroChainBehavesAsDefault(t *testing.T) {
	var chain Chain
	if got := chain.Ordered(); !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("expected default-only chain, got %#v", got)
	}
	if chain.Key() != NewChain().Key() {
		t.Fatalf("expected zero chain key to match empty chain")
	}
}

func TestChainProbe(t *testing.T) {
	chain := NewChain("test", "dev")

	cases := []struct {
		name      string
		requested string
		explicit  bool
		expect    []string
	}{
		{name: "implicit", expect: []string{"test", "dev", ""}},
		{name: "explicit head", requested: "test", explicit: true, expect: []string{"test", "dev", ""}},
		{name: "explicit member", requested: "dev", explicit: true, expect: []string{"test", "dev", ""}},
		{name: "explicit default", requested: "", explicit: true, expect: []string{"test", "dev", ""}},
		{name: "ad hoc postfix", requested: "cs", explicit: true, expect: []string{"cs", "test", "dev", ""}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := chain.Probe(tc.requested, tc.explicit); !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("unexpected probe\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestChainKeyDistinguishesOrder(t *testing.T) {
	if NewChain("a", "b").Key() == NewChain("b", "a").Key() {
		t.Fatalf("expected chain keys to depend on order")
	}
}
