package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestCheckRequiredAndOptional(t *testing.T) {
	t.Parallel()

	required := MustCompile("first_name", model.String().Min(1, "Please enter a name"))
	_, issues := required.Check(nil, false)
	if len(issues) != 1 || issues[0].Keyword != model.KeywordRequired {
		t.Fatalf("expected required issue, got %#v", issues)
	}
	if issues[0].Message != defaultRequiredMessage {
		t.Fatalf("required message = %q", issues[0].Message)
	}

	_, issues = required.Check("", true)
	want := []Issue{{Field: "first_name", Path: "first_name", Keyword: model.KeywordMinLength, Message: "Please enter a name"}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	optional := MustCompile("position", model.String().AsOptional())
	if _, issues := optional.Check(nil, false); len(issues) != 0 {
		t.Fatalf("optional missing value should pass: %#v", issues)
	}
	if _, issues := optional.Check(nil, true); len(issues) != 0 {
		t.Fatalf("optional nil value should pass: %#v", issues)
	}

	nullable := MustCompile("employment", model.String().OneOf("a", "b").AsNullable())
	if _, issues := nullable.Check(nil, true); len(issues) != 0 {
		t.Fatalf("nullable nil should pass: %#v", issues)
	}
	if nullable.Valid("c") {
		t.Fatalf("expected enum violation")
	}

	untyped := MustCompile("resume", model.Rule{})
	if _, issues := untyped.Check(nil, false); len(issues) != 0 {
		t.Fatalf("zero rule should accept a missing value: %#v", issues)
	}
}

func TestCheckFormats(t *testing.T) {
	t.Parallel()

	email := MustCompile("email", model.String().Email("Invalid email"))
	if !email.Valid("user@example.com") {
		t.Fatalf("expected valid email")
	}
	_, issues := email.Check("nope", true)
	if len(issues) != 1 || issues[0].Keyword != model.KeywordFormat || issues[0].Message != "Invalid email" {
		t.Fatalf("unexpected email issues %#v", issues)
	}

	site := MustCompile("portfolio_url", model.String().URL().AsOptional())
	if !site.Valid("https://example.com/me") || site.Valid("not a url") {
		t.Fatalf("unexpected url validation")
	}

	dob := MustCompile("date_of_birth", model.Date())
	if !dob.Valid("1990-04-01") || dob.Valid("01/04/1990") {
		t.Fatalf("unexpected date validation")
	}
	parsed, issues := dob.Check(time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), true)
	if len(issues) != 0 || parsed != "1990-04-01" {
		t.Fatalf("expected time.Time to format as date, got %v %#v", parsed, issues)
	}

	code := MustCompile("code", model.String().Match(`^L-\d+$`, "Bad code"))
	if !code.Valid("L-12") {
		t.Fatalf("expected pattern match")
	}
	if _, issues := code.Check("X", true); len(issues) != 1 || issues[0].Message != "Bad code" {
		t.Fatalf("unexpected pattern issues %#v", issues)
	}
}

func TestCheckCoerceAndUnwrap(t *testing.T) {
	t.Parallel()

	salary := MustCompile("salary", model.Number().Coerced().AsOptional())
	parsed, issues := salary.Check("1500.50", true)
	if len(issues) != 0 || parsed != 1500.5 {
		t.Fatalf("coerce number: %v %#v", parsed, issues)
	}
	if parsed, issues := salary.Check("  ", true); len(issues) != 0 || parsed != nil {
		t.Fatalf("blank optional number: %v %#v", parsed, issues)
	}
	if _, issues := salary.Check("abc", true); len(issues) != 1 || issues[0].Keyword != model.KeywordType {
		t.Fatalf("expected type issue, got %#v", issues)
	}

	strict := MustCompile("count", model.Integer().Min(1))
	if strict.Valid("3") {
		t.Fatalf("uncoerced string should not satisfy integer")
	}
	if !strict.Valid(3) {
		t.Fatalf("expected int to satisfy integer")
	}

	search := MustCompile("search_info", model.String().Min(1, "Please select").UnwrapKey("value"))
	parsed, issues = search.Check(map[string]any{"label": "Acme", "value": "L-01"}, true)
	if len(issues) != 0 || parsed != "L-01" {
		t.Fatalf("unwrap: %v %#v", parsed, issues)
	}
	if _, issues := search.Check(map[string]any{"label": "x", "value": ""}, true); len(issues) != 1 || issues[0].Message != "Please select" {
		t.Fatalf("expected min issue after unwrap, got %#v", issues)
	}
}

func TestCheckArraysAndFiles(t *testing.T) {
	t.Parallel()

	skills := MustCompile("skills", model.Array(model.String().Min(1, "Empty skill")).Min(1, "Select at least one"))
	_, issues := skills.Check([]any{}, true)
	if len(issues) != 1 || issues[0].Keyword != model.KeywordMinItems || issues[0].Message != "Select at least one" {
		t.Fatalf("unexpected minItems issues %#v", issues)
	}
	_, issues = skills.Check([]string{"go", ""}, true)
	if len(issues) != 1 || issues[0].Path != "skills.1" || issues[0].Message != "Empty skill" {
		t.Fatalf("unexpected item issues %#v", issues)
	}

	avatar := MustCompile("avatar", model.File().WithMessage("Please upload"))
	if !avatar.Valid("photo.png") || !avatar.Valid(map[string]any{"name": "photo.png", "size": 10}) {
		t.Fatalf("expected file values to pass")
	}
	_, issues = avatar.Check(42, true)
	if len(issues) != 1 || issues[0].Keyword != model.KeywordType || issues[0].Message != "Please upload" {
		t.Fatalf("unexpected file issues %#v", issues)
	}
	_, issues = avatar.Check(nil, false)
	if len(issues) != 1 || issues[0].Message != "Please upload" {
		t.Fatalf("missing file should use the rule message, got %#v", issues)
	}

	province := MustCompile("province", model.Object().WithMessage("Select a province"))
	if !province.Valid(map[string]any{"code": "01"}) || province.Valid("01") {
		t.Fatalf("unexpected object validation")
	}
}

func TestCompileRejectsBadRules(t *testing.T) {
	t.Parallel()

	if _, err := Compile("code", model.String().Match(`(`)); err == nil {
		t.Fatalf("expected pattern compile error")
	}
	if _, err := Compile("x", model.Rule{Type: "uuid"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	got := Document(model.String().Min(1).Email().AsNullable())
	want := map[string]any{
		"type":      []any{"string", "null"},
		"minLength": 1,
		"format":    "email",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	arr := Document(model.Array(model.String()).Max(3))
	if arr["maxItems"] != 3 || arr["items"].(map[string]any)["type"] != "string" {
		t.Fatalf("unexpected array document %#v", arr)
	}
}

func TestResultAndError(t *testing.T) {
	t.Parallel()

	result := NewResult([]Issue{
		{Field: "email", Path: "email", Keyword: "format", Message: "Invalid email"},
		{Field: "skills", Path: "skills.0", Keyword: "minLength", Message: "Empty"},
	})
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	err := result.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if got := len(Issues(err)); got != 2 {
		t.Fatalf("Issues = %d", got)
	}
	if want := "validation: invalid values: email: Invalid email; skills.0: Empty"; err.Error() != want {
		t.Fatalf("Error() = %q", err.Error())
	}
	if issue, ok := result.FieldIssue("skills"); !ok || issue.Path != "skills.0" {
		t.Fatalf("FieldIssue = %#v %v", issue, ok)
	}
	if len(result.ByField()["email"]) != 1 {
		t.Fatalf("ByField grouping failed")
	}
	if NewResult(nil).Err() != nil {
		t.Fatalf("valid result should have nil Err")
	}
}
