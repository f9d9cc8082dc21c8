package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Environment collection
	EnvInfo               Code = 1000
	EnvDuplicateType      Code = 1001
	EnvDuplicateProperty  Code = 1002
	EnvUnknownType        Code = 1003
	EnvUnknownConformance Code = 1004
	EnvDuplicateCase      Code = 1005
	EnvBadEnumValue       Code = 1006
	EnvUnknownContract    Code = 1007

	// Rewrite passes
	PassInfo              Code = 2000
	PassUnknownLabel      Code = 2001
	PassUnmatchedCall     Code = 2002
	PassUnknownEnumCase   Code = 2003
	PassDuplicateArgument Code = 2004
	PassMissingArgument   Code = 2005
	PassSelfOutsideType   Code = 2006
	PassTooManyArguments  Code = 2007

	// Lowering (non-fatal observations only)
	LowerInfo            Code = 3000
	LowerUnreachableCode Code = 3001
	LowerUnsupported     Code = 3002
	LowerNoContracts     Code = 3003
	LowerDuplicateInit   Code = 3004

	// Project configuration
	PrjInfo            Code = 5000
	PrjManifestInvalid Code = 5001
	PrjUnknownTarget   Code = 5002
	PrjBadVerification Code = 5003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		EnvInfo:               "Environment information",
		EnvDuplicateType:      "Duplicate type declaration",
		EnvDuplicateProperty:  "Duplicate property declaration",
		EnvUnknownType:        "Unknown type",
		EnvUnknownConformance: "Conformance to an unknown trait",
		EnvDuplicateCase:      "Duplicate enum case",
		EnvBadEnumValue:       "Enum case value is not a literal",
		EnvUnknownContract:    "Behavior block for an unknown contract",
		PassInfo:              "Rewrite pass information",
		PassUnknownLabel:      "Argument label matches no parameter",
		PassUnmatchedCall:     "Call matches no declaration",
		PassUnknownEnumCase:   "Unknown enum case",
		PassDuplicateArgument: "Argument supplied more than once",
		PassMissingArgument:   "Missing argument for parameter without default",
		PassSelfOutsideType:   "Self used outside of a type",
		PassTooManyArguments:  "Too many arguments",
		LowerInfo:             "Lowering information",
		LowerUnreachableCode:  "Code after return is never executed",
		LowerUnsupported:      "Construct not supported by the target",
		LowerNoContracts:      "Module declares no contracts",
		LowerDuplicateInit:    "Contract declares more than one initializer",
		PrjInfo:               "Project information",
		PrjManifestInvalid:    "Invalid flint.toml",
		PrjUnknownTarget:      "Unknown compilation target",
		PrjBadVerification:    "Unknown verification mode",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ENV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PAS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
