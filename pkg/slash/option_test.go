package slash

import "testing"

func TestOptionEqualIgnoresOrder(t *testing.T) {
	a := StringOption("colour", "Pick one", true,
		&Choice{Name: "red", Value: "r"},
		&Choice{Name: "green", Value: "g"},
		&Choice{Name: "blue", Value: "b"},
	)
	b := StringOption("colour", "Pick one", true,
		&Choice{Name: "blue", Value: "b"},
		&Choice{Name: "red", Value: "r"},
		&Choice{Name: "green", Value: "g"},
	)
	if !a.Equal(b) {
		t.Fatal("options with reordered choices are not equal")
	}

	b.Choices[0].Value = "B"
	if a.Equal(b) {
		t.Fatal("options with different choice values are equal")
	}
}

func TestOptionEqualCountsDuplicates(t *testing.T) {
	x := &Choice{Name: "x", Value: 1}
	y := &Choice{Name: "y", Value: 2}
	a := IntegerOption("n", "n", false, x, x, y)
	b := IntegerOption("n", "n", false, x, y, y)
	if a.Equal(b) {
		t.Fatal("multisets with different multiplicities compare equal")
	}
}

func TestOptionEqualFields(t *testing.T) {
	base := UserOption("user", "The user", false)
	cases := map[string]struct {
		other *Option
		equal bool
	}{
		"same":              {UserOption("user", "The user", false), true},
		"other description": {UserOption("user", "Someone", false), true},
		"other name":        {UserOption("member", "The user", false), false},
		"other required":    {UserOption("user", "The user", true), false},
		"extra sub-option":  {&Option{Name: "user", Type: OptionUser, Options: []*Option{BooleanOption("x", "x", false)}}, false},
		"nil":               {nil, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := base.Equal(tc.other); got != tc.equal {
				t.Errorf("Equal = %v, want %v", got, tc.equal)
			}
		})
	}
}

func TestChoiceEqualNormalisesNumbers(t *testing.T) {
	local := &Choice{Name: "six", Value: int64(6)}
	remote := &Choice{Name: "six", Value: float64(6)}
	if !local.Equal(remote) {
		t.Error("int64 and float64 choice values differ")
	}
	if local.Equal(&Choice{Name: "six", Value: "6"}) {
		t.Error("number and string choice values are equal")
	}
}

func TestParseOptionType(t *testing.T) {
	cases := map[string]OptionType{
		"USER":              OptionUser,
		"user":              OptionUser,
		"sub-command":       OptionSubCommand,
		"SUB_COMMAND_GROUP": OptionSubCommandGroup,
		" integer ":         OptionInteger,
	}
	for in, want := range cases {
		got, ok := ParseOptionType(in)
		if !ok || got != want {
			t.Errorf("ParseOptionType(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseOptionType("float"); ok {
		t.Error("ParseOptionType accepted an unknown type")
	}
}

func TestOptionTypePredicates(t *testing.T) {
	for _, typ := range []OptionType{OptionUser, OptionChannel, OptionRole} {
		if !typ.IsIdentifier() {
			t.Errorf("%s is not an identifier", typ)
		}
	}
	if OptionString.IsIdentifier() || OptionInteger.IsCommand() {
		t.Error("scalar types misclassified")
	}
	if !OptionSubCommand.IsCommand() || !OptionSubCommandGroup.IsCommand() {
		t.Error("command types misclassified")
	}
}
