package types

// TestKey is the structured, cross-process-stable identity of a test case.
// It can be re-resolved against loaded metadata by a selector.Resolver.
type TestKey struct {
	Module       string
	ClassName    string
	MethodName   string
	GenericArity int
	TypeArgs     []string
}

// Method returns the method identity encoded in the key.
func (k TestKey) Method() Method {
	return Method{
		ClassName:    k.ClassName,
		Name:         k.MethodName,
		GenericArity: k.GenericArity,
		TypeArgs:     k.TypeArgs,
	}
}

// String implements the Stringer interface for TestKey
func (k TestKey) String() string {
	return k.Method().String()
}

// TestCase describes one discovered test case. Instances are produced by
// discovery, held by the caller, and passed back for execution via their
// serialized form. Immutable once created.
type TestCase struct {
	ID          string // opaque engine-assigned identifier
	DisplayName string
	ClassName   string // fully-qualified declaring class
	MethodName  string
	Serialized  string // opaque token the engine accepts for execution
	Key         TestKey
}

// Name returns the best display name for the case.
func (tc TestCase) Name() string {
	if tc.DisplayName != "" {
		return tc.DisplayName
	}
	if tc.ClassName != "" {
		return tc.ClassName + "." + tc.MethodName
	}
	return tc.MethodName
}
