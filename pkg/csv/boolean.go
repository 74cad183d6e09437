package csv

import (
	"fmt"
	"strings"
)

type booleanKind int

const (
	booleanDisabled booleanKind = iota
	booleanOneOrZero
	booleanYesOrNo
	booleanTrueOrFalse
	booleanCustom
)

// BooleanDecodingBehavior is the rule used to read a field as a bool.
// Exactly one behavior is active per session.
type BooleanDecodingBehavior struct {
	kind         booleanKind
	trueLiteral  string
	falseLiteral string
}

var (
	// BooleanDisabled fails every boolean decode.
	BooleanDisabled = BooleanDecodingBehavior{kind: booleanDisabled}
	// BooleanOneOrZero accepts "1" and "0".
	BooleanOneOrZero = BooleanDecodingBehavior{kind: booleanOneOrZero, trueLiteral: "1", falseLiteral: "0"}
	// BooleanYesOrNo accepts "yes" and "no" (case-sensitive).
	BooleanYesOrNo = BooleanDecodingBehavior{kind: booleanYesOrNo, trueLiteral: "yes", falseLiteral: "no"}
	// BooleanTrueOrFalse accepts "true" and "false" (case-sensitive).
	BooleanTrueOrFalse = BooleanDecodingBehavior{kind: booleanTrueOrFalse, trueLiteral: "true", falseLiteral: "false"}
)

// BooleanCustom accepts exactly the two given literals. The literals must
// differ; NewReader and Options.Validate reject an equal pair with a
// *ConfigError.
func BooleanCustom(trueLiteral, falseLiteral string) BooleanDecodingBehavior {
	return BooleanDecodingBehavior{kind: booleanCustom, trueLiteral: trueLiteral, falseLiteral: falseLiteral}
}

// validate rejects a custom pair that cannot tell true from false.
func (b BooleanDecodingBehavior) validate() error {
	if b.kind == booleanCustom && b.trueLiteral == b.falseLiteral {
		return &ConfigError{
			Field: "BooleanDecoding",
			Err:   fmt.Errorf("true and false literals are both %q", b.trueLiteral),
		}
	}
	return nil
}

// Decode reads value according to the behavior.
func (b BooleanDecodingBehavior) Decode(value string) (bool, error) {
	if b.kind == booleanDisabled {
		return false, ErrBooleanDecodingDisabled
	}
	switch value {
	case b.trueLiteral:
		return true, nil
	case b.falseLiteral:
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not %q or %q", ErrInvalidBoolean, value, b.trueLiteral, b.falseLiteral)
}

// String returns the form accepted by ParseBooleanDecoding.
func (b BooleanDecodingBehavior) String() string {
	switch b.kind {
	case booleanDisabled:
		return "disabled"
	case booleanOneOrZero:
		return "oneOrZero"
	case booleanYesOrNo:
		return "yesOrNo"
	case booleanTrueOrFalse:
		return "trueOrFalse"
	default:
		return "custom:" + b.trueLiteral + "/" + b.falseLiteral
	}
}

// ParseBooleanDecoding parses "disabled", "oneOrZero", "yesOrNo",
// "trueOrFalse" or "custom:<true>/<false>".
func ParseBooleanDecoding(s string) (BooleanDecodingBehavior, error) {
	switch s {
	case "", "disabled":
		return BooleanDisabled, nil
	case "oneOrZero":
		return BooleanOneOrZero, nil
	case "yesOrNo":
		return BooleanYesOrNo, nil
	case "trueOrFalse":
		return BooleanTrueOrFalse, nil
	}
	if rest, ok := strings.CutPrefix(s, "custom:"); ok {
		t, f, ok := strings.Cut(rest, "/")
		if ok && t != f {
			return BooleanCustom(t, f), nil
		}
	}
	return BooleanDisabled, &ConfigError{Field: "BooleanDecoding", Err: fmt.Errorf("unknown behavior %q", s)}
}
