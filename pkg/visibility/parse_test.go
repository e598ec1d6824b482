package visibility

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseShorthand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		expr string
		want Condition
	}{
		{
			name: "neq string",
			expr: `employment_type != "employed"`,
			want: Neq("employment_type", "employed"),
		},
		{
			name: "negated contains",
			expr: `!(skills contains "others")`,
			want: Not(Contains("skills", "others")),
		},
		{
			name: "bare word literal",
			expr: `registration_choice == new`,
			want: Eq("registration_choice", "new"),
		},
		{
			name: "number bool null",
			expr: `count == 3 && enabled == true || note == null`,
			want: Or(
				And(Eq("count", 3.0), Eq("enabled", true)),
				Eq("note", nil),
			),
		},
		{
			name: "in list",
			expr: `status in ["a", 'b']`,
			want: In("status", "a", "b"),
		},
		{
			name: "truthy and grouping",
			expr: `a && (b || !c) && d`,
			want: And(
				Truthy("a"),
				Or(Truthy("b"), Not(Truthy("c"))),
				Truthy("d"),
			),
		},
		{
			name: "dotted path",
			expr: `province.code == "01"`,
			want: Eq("province.code", "01"),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.expr)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.expr, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tc.expr, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		"",
		"   ",
		"a = b",
		"a & b",
		"(a",
		`a == "open`,
		"a ==",
		"status in []",
		"status in [a b]",
		"a b",
		"== a",
		"notes is",
		"notes is not blank",
	} {
		if _, err := Parse(expr); err == nil {
			t.Fatalf("Parse(%q): expected error", expr)
		} else if !strings.HasPrefix(err.Error(), "visibility: ") {
			t.Fatalf("Parse(%q): error %q missing package prefix", expr, err)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse("a ==")
}

func TestStringParsesBack(t *testing.T) {
	t.Parallel()

	for _, cond := range []Condition{
		Empty("notes"),
		NotEmpty("notes"),
		Truthy("enabled"),
		Not(Truthy("enabled")),
		And(Empty("a"), Or(NotEmpty("b"), Eq("c", 0.0))),
		Or(Neq("status", "new"), In("size", "s", 2.0)),
	} {
		rendered := cond.String()
		got, err := Parse(rendered)
		if err != nil {
			t.Fatalf("Parse(%q): %v", rendered, err)
		}
		if diff := cmp.Diff(cond, got); diff != "" {
			t.Fatalf("round trip of %q mismatch (-want +got):\n%s", rendered, diff)
		}
	}
}
