package services

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected []string
	}{
		{name: "all classes at minimum length", password: "Ab1!aaaa", expected: nil},
		{name: "empty", password: "", expected: []string{RuleRequired}},
		{name: "missing lowercase only", password: "ALLUPPER1!", expected: []string{RuleLower}},
		{name: "common password", password: "password", expected: []string{RuleUpper, RuleDigit, RuleSymbol, RuleCommon}},
		{name: "common password with all classes", password: "P@ssw0rd", expected: []string{RuleCommon}},
		{name: "too short", password: "Ab1!", expected: []string{RuleMinLength}},
		{name: "too long", password: "Ab1!" + strings.Repeat("a", 125), expected: []string{RuleMaxLength}},
		{name: "no symbol", password: "Abcdefg1", expected: []string{RuleSymbol}},
		{name: "no digit", password: "Abcdefg!", expected: []string{RuleDigit}},
		{name: "every rule at once", password: "      ", expected: []string{RuleMinLength, RuleUpper, RuleLower, RuleDigit, RuleSymbol}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.expected)
			}
		})
	}
}
