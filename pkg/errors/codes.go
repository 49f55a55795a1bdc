package errors

// Kind groups diagnostics by the pipeline stage that raised them (spec §7).
type Kind string

const (
	KindParse      Kind = "Parse"
	KindImport     Kind = "Import"
	KindValidation Kind = "Validation"
	KindMacro      Kind = "Macro"
	KindTransform  Kind = "Transform"
	KindRuntime    Kind = "Runtime"
	KindCodeGen    Kind = "CodeGen"
	KindTranspiler Kind = "Transpiler"
)

// Code is a 4-digit diagnostic code in [1000, 7999], grouped by Kind
// (spec §7). Each Kind owns a contiguous block so a code's leading digit
// identifies its stage at a glance.
type Code int

const (
	// Parse: 1000-1999
	CodeUnclosedList    Code = 1001
	CodeUnclosedString  Code = 1002
	CodeUnclosedComment Code = 1003
	CodeUnexpectedToken Code = 1004
	CodeUnexpectedEOF   Code = 1005
	CodeInvalidChar     Code = 1006

	// Import: 2000-2999
	CodeModuleNotFound     Code = 2001
	CodeCircularMacro      Code = 2002
	CodeExportMissing      Code = 2003
	CodeRemoteFetchFailed  Code = 2004
	CodeInvalidImportForm  Code = 2005

	// Validation: 3000-3999
	CodeDuplicateDecl   Code = 3001
	CodeTemporalDeadZone Code = 3002
	CodeInvalidExpr     Code = 3003

	// Macro: 4000-4999
	CodeMacroNotFound       Code = 4001
	CodeMacroExpansionFailed Code = 4002
	CodeMacroRecursionLimit Code = 4003

	// Transform: 5000-5999
	CodeInvalidSyntaxSugar Code = 5001

	// Runtime (C5 interpreter, macro-time evaluation): 6000-6999
	CodeUndefinedVariable Code = 6001
	CodeNotCallable       Code = 6002
	CodeWrongArity        Code = 6003
	CodeTypeMismatch      Code = 6004

	// CodeGen: 7000-7499
	CodeUnsupportedIRNode Code = 7001

	// Transpiler (driver-level orchestration failures): 7500-7999
	CodeIOFailure Code = 7501
)

// codeNames gives each code a stable symbolic identifier, returned by
// Code.Name.
var codeNames = map[Code]string{
	CodeUnclosedList:         "UNCLOSED_LIST",
	CodeUnclosedString:       "UNCLOSED_STRING",
	CodeUnclosedComment:      "UNCLOSED_COMMENT",
	CodeUnexpectedToken:      "UNEXPECTED_TOKEN",
	CodeUnexpectedEOF:        "UNEXPECTED_EOF",
	CodeInvalidChar:          "INVALID_CHARACTER",
	CodeModuleNotFound:       "MODULE_NOT_FOUND",
	CodeCircularMacro:        "CIRCULAR_IMPORT_MACRO",
	CodeExportMissing:        "EXPORT_MISSING",
	CodeRemoteFetchFailed:    "REMOTE_FETCH_FAILED",
	CodeInvalidImportForm:    "INVALID_IMPORT_FORM",
	CodeDuplicateDecl:        "DUPLICATE_DECLARATION",
	CodeTemporalDeadZone:     "TEMPORAL_DEAD_ZONE",
	CodeInvalidExpr:          "INVALID_EXPRESSION",
	CodeMacroNotFound:        "MACRO_NOT_FOUND",
	CodeMacroExpansionFailed: "MACRO_EXPANSION_FAILED",
	CodeMacroRecursionLimit:  "MACRO_RECURSION_LIMIT",
	CodeInvalidSyntaxSugar:   "INVALID_SYNTAX_SUGAR",
	CodeUndefinedVariable:    "UNDEFINED_VARIABLE",
	CodeNotCallable:          "NOT_CALLABLE",
	CodeWrongArity:           "WRONG_ARITY",
	CodeTypeMismatch:         "TYPE_MISMATCH",
	CodeUnsupportedIRNode:    "UNSUPPORTED_IR_NODE",
	CodeIOFailure:            "IO_FAILURE",
}

// Name returns the symbolic identifier for c, or "UNKNOWN" if unrecognized.
func (c Code) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// KindOf infers a Kind from a code's leading digit.
func KindOf(c Code) Kind {
	switch {
	case c >= 1000 && c < 2000:
		return KindParse
	case c >= 2000 && c < 3000:
		return KindImport
	case c >= 3000 && c < 4000:
		return KindValidation
	case c >= 4000 && c < 5000:
		return KindMacro
	case c >= 5000 && c < 6000:
		return KindTransform
	case c >= 6000 && c < 7000:
		return KindRuntime
	case c >= 7000 && c < 7500:
		return KindCodeGen
	default:
		return KindTranspiler
	}
}

// suggestionTable holds a one-line, per-code default suggestion. A
// Diagnostic may override this with WithSuggestion.
var suggestionTable = map[Code]string{
	CodeUnclosedList:         "add the missing closing parenthesis",
	CodeUnclosedString:       "add the missing closing quote",
	CodeModuleNotFound:       "check the import path and baseDir option",
	CodeCircularMacro:        "macros cannot participate in import cycles; move the macro to a non-cyclic module",
	CodeDuplicateDecl:        "rename one of the two declarations",
	CodeTemporalDeadZone:     "move the declaration above its first use, or close over it in a nested function",
	CodeMacroNotFound:        "check that the macro is defined or imported in this file",
	CodeMacroRecursionLimit:  "the macro is not reaching a fixpoint; check for self-referential expansion",
	CodeUndefinedVariable:    "check for a typo, or that the binding is imported",
}

// docURL returns the documentation link shown under "For more information"
// for kind k, or "" if none is configured.
func docURL(k Kind) string {
	return "https://hql-lang.dev/errors/" + string(k)
}
