package domain

// TestFailure represents a failed test case attributed to one case id
type TestFailure struct {
	CaseID   string   `json:"case_id,omitempty"`
	Suite    string   `json:"suite"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Steps    []string `json:"steps,omitempty"`
	Attempts int      `json:"attempts"`
	TimedOut bool     `json:"timed_out,omitempty"`
	Resolved bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}
