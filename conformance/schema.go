package conformance

// TestSuite represents a complete YAML test file
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase represents a single test within a suite
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        interface{} `yaml:"skip,omitempty"`  // bool or string
	Chunk       string      `yaml:"chunk"`           // serialized chunk, one JSON array of statements
	Args        []string    `yaml:"args,omitempty"`  // passed to the chunk as ... (strings)
	Expect      Expectation `yaml:"expect"`
}

// Expectation defines what result is expected from a test
type Expectation struct {
	Values []interface{} `yaml:"values,omitempty"` // exact match of every returned value
	Error  string        `yaml:"error,omitempty"`  // substring of the fault message
	Output string        `yaml:"output,omitempty"` // exact print output
	Type   string        `yaml:"type,omitempty"`   // type name of the first returned value
}

// IsSkipped returns true if this test should be skipped
func (tc *TestCase) IsSkipped() (bool, string) {
	if tc.Skip == nil {
		return false, ""
	}

	switch v := tc.Skip.(type) {
	case bool:
		if v {
			return true, "skipped"
		}
		return false, ""
	case string:
		return true, v
	default:
		return false, ""
	}
}
