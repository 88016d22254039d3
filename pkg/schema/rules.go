package schema

import (
	"regexp"
	"strconv"
)

// Constraints is the parsed form of a field's validation rules.
type Constraints struct {
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Pattern   *regexp.Regexp
}

// Constraints parses the field's validation rules. Rules that fail to parse
// are skipped; New rejects them up front.
func (f Field) Constraints() Constraints {
	var c Constraints
	for _, rule := range f.Validations {
		switch rule.Kind {
		case ValidationRuleMin:
			if v, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil {
				c.Min = &v
			}
		case ValidationRuleMax:
			if v, err := strconv.ParseFloat(rule.Params["value"], 64); err == nil {
				c.Max = &v
			}
		case ValidationRuleMinLength:
			if v, err := strconv.Atoi(rule.Params["value"]); err == nil {
				c.MinLength = &v
			}
		case ValidationRuleMaxLength:
			if v, err := strconv.Atoi(rule.Params["value"]); err == nil {
				c.MaxLength = &v
			}
		case ValidationRulePattern:
			if re, err := regexp.Compile(rule.Params["pattern"]); err == nil {
				c.Pattern = re
			}
		}
	}
	return c
}

// MinRule builds a numeric lower bound rule.
func MinRule(v int64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": strconv.FormatInt(v, 10)}}
}

// MaxRule builds a numeric upper bound rule.
func MaxRule(v int64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": strconv.FormatInt(v, 10)}}
}

// MinLengthRule builds a minimum length rule for text or list fields.
func MinLengthRule(n int) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMinLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// MaxLengthRule builds a maximum length rule for text or list fields.
func MaxLengthRule(n int) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMaxLength, Params: map[string]string{"value": strconv.Itoa(n)}}
}

// PatternRule builds a regular expression rule for text fields.
func PatternRule(expr string) ValidationRule {
	return ValidationRule{Kind: ValidationRulePattern, Params: map[string]string{"pattern": expr}}
}

// MinValueRule builds a numeric lower bound from a decoded document value.
func MinValueRule(v float64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMin, Params: map[string]string{"value": formatFloat(v)}}
}

// MaxValueRule builds a numeric upper bound from a decoded document value.
func MaxValueRule(v float64) ValidationRule {
	return ValidationRule{Kind: ValidationRuleMax, Params: map[string]string{"value": formatFloat(v)}}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
