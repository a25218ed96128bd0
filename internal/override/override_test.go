package override

import "testing"

func TestPrecedenceBinaryBeatsWildcardBeatsDefault(t *testing.T) {
	binaryH := Literal("binary-value")
	wildcardH := Literal("wildcard-value")
	defaultH := Literal("default-value")

	c, err := Resolve(Input{BinaryOverride: &binaryH, WildcardOverride: &wildcardH, Default: &defaultH})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c(Context{})
	if got != "binary-value" {
		t.Errorf("got %v, want binary-value", got)
	}

	c, err = Resolve(Input{WildcardOverride: &wildcardH, Default: &defaultH})
	if err != nil {
		t.Fatal(err)
	}
	got, _ = c(Context{})
	if got != "wildcard-value" {
		t.Errorf("got %v, want wildcard-value", got)
	}

	c, err = Resolve(Input{Default: &defaultH})
	if err != nil {
		t.Fatal(err)
	}
	got, _ = c(Context{})
	if got != "default-value" {
		t.Errorf("got %v, want default-value", got)
	}
}

func TestResolveNoHandler(t *testing.T) {
	if _, err := Resolve(Input{}); err != ErrNoHandler {
		t.Errorf("got %v, want ErrNoHandler", err)
	}
}

type stubProvider struct{}

func (stubProvider) GetVersionOverride(ctx Context) (any, error) {
	return "method-value", nil
}

func TestMethodHandler(t *testing.T) {
	h := Method("GetVersionOverride")
	c, err := Resolve(Input{Default: &h, Provider: stubProvider{}})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := c(Context{BinaryName: "wget"})
	if got != "method-value" {
		t.Errorf("got %v, want method-value", got)
	}
}
