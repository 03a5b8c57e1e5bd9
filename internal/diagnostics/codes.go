package diagnostics

// Error codes for the Jelly compiler
const (
	// Parser errors (P prefix)
	ErrUnexpectedToken    = "P0001"
	ErrExpectedToken      = "P0002"
	ErrInvalidExpression  = "P0003"
	ErrInvalidStatement   = "P0004"
	ErrInvalidDeclaration = "P0005"
	ErrMissingIdentifier  = "P0006"
	ErrMissingType        = "P0007"
	ErrMalformedLiteral   = "P0008"
	ErrUnterminatedString = "P0009"

	// Resolution errors (R prefix)
	ErrUndefinedSymbol    = "R0001"
	ErrRedeclaredSymbol   = "R0002"
	ErrUnresolvedTypeName = "R0003"
	ErrUnknownMember      = "R0004"
	ErrUnknownOperator    = "R0005"

	// Type checker errors (T prefix)
	ErrTypeMismatch        = "T0001"
	ErrNonBoolCondition    = "T0002"
	ErrVoidValue           = "T0003"
	ErrCyclicStorage       = "T0004"
	ErrNonExhaustiveSwitch = "T0005"
	ErrDuplicateEnumValue  = "T0006"
	ErrNonConstantEnumInit = "T0007"
	ErrMisplacedControl    = "T0008"
	ErrArgumentCount       = "T0009"
	ErrNonIntegerSubscript = "T0010"
	ErrNotAssignable       = "T0011"
	ErrEntryPoint          = "T0012"
	ErrMissingReturn       = "T0013"
	ErrNotCallable         = "T0014"
	ErrInvalidCast         = "T0015"
	ErrArraySize           = "T0016"
	ErrEmptyCase           = "T0017"
	ErrMisplacedElseCase   = "T0018"

	// Driver errors (D prefix)
	ErrFileNotFound    = "D0001"
	ErrDuplicateSource = "D0002"
	ErrBuildDirectory  = "D0003"
)
