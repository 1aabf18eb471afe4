package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const treeFixture = `
client:
  html:
    checkout:
      standard:
        default:
          subparts: [address, payment]
        url:
          controller: kasse
          config:
            absoluteUri: true
    basket:
      empty: []
      flag: "true"
`

func TestTreeLookups(t *testing.T) {
	t.Parallel()

	tree, err := ParseTree([]byte(treeFixture))
	if err != nil {
		t.Fatalf("parse tree: %v", err)
	}

	if got := Strings(tree, "client/html/checkout/standard/default/subparts", nil); !cmp.Equal(got, []string{"address", "payment"}) {
		t.Fatalf("subparts = %v", got)
	}
	if got := String(tree, "client/html/checkout/standard/url/controller", "checkout"); got != "kasse" {
		t.Fatalf("controller = %q, want %q", got, "kasse")
	}
	if got := String(tree, "client/html/checkout/standard/url/action", "index"); got != "index" {
		t.Fatalf("action = %q, want fallback %q", got, "index")
	}
	if got := Map(tree, "client/html/checkout/standard/url/config", nil); got["absoluteUri"] != true {
		t.Fatalf("url config = %v", got)
	}
	if got := Bool(tree, "client/html/basket/flag", false); !got {
		t.Fatal("expected string flag to parse as true")
	}
}

func TestStringsKeepsConfiguredEmptyList(t *testing.T) {
	t.Parallel()

	tree, err := ParseTree([]byte(treeFixture))
	if err != nil {
		t.Fatalf("parse tree: %v", err)
	}
	got := Strings(tree, "client/html/basket/empty", []string{"fallback"})
	if got == nil || len(got) != 0 {
		t.Fatalf("empty list = %#v, want empty non-nil slice", got)
	}
	if fallback := Strings(tree, "client/html/basket/missing", []string{"a", "b"}); !cmp.Equal(fallback, []string{"a", "b"}) {
		t.Fatalf("fallback = %v", fallback)
	}
}

func TestTreeSetAndMerge(t *testing.T) {
	t.Parallel()

	base, err := ReadTree(strings.NewReader(treeFixture))
	if err != nil {
		t.Fatalf("read tree: %v", err)
	}
	overlay := NewTree()
	overlay.Set("client/html/checkout/standard/default/subparts", []string{"summary"})
	overlay.Set("client/html/checkout/standard/url/action", "start")

	merged := base.Merge(overlay)
	if got := Strings(merged, "client/html/checkout/standard/default/subparts", nil); !cmp.Equal(got, []string{"summary"}) {
		t.Fatalf("subparts = %v", got)
	}
	if got := String(merged, "client/html/checkout/standard/url/action", ""); got != "start" {
		t.Fatalf("action = %q", got)
	}
	if got := String(merged, "client/html/checkout/standard/url/controller", ""); got != "kasse" {
		t.Fatalf("merge dropped sibling key, controller = %q", got)
	}
}

func TestNilProviderUsesFallbacks(t *testing.T) {
	t.Parallel()

	if got := String(nil, "a/b", "x"); got != "x" {
		t.Fatalf("String = %q", got)
	}
	if got := Strings(nil, "a/b", []string{"y"}); !cmp.Equal(got, []string{"y"}) {
		t.Fatalf("Strings = %v", got)
	}
	var tree *Tree
	if _, ok := tree.Get("a"); ok {
		t.Fatal("expected nil tree lookup to miss")
	}
}
