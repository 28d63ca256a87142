package domain

// Form field names of a duplication submission.
const (
	FieldSource    = "source"
	FieldDomain    = "domain"
	FieldTitle     = "title"
	FieldEmail     = "email"
	FieldCopyFiles = "copy_files"
	FieldKeepUsers = "keep_users"
	FieldLog       = "log"
	FieldLogPath   = "log-path"
)

// Submission is an untrusted duplication form as received from a client.
type Submission struct {
	Fields map[string]string
	// Token is the anti-forgery token presented with the form.
	Token string
}

// Get returns a field value, or "" when absent.
func (s Submission) Get(name string) string {
	return s.Fields[name]
}

// Flag reports whether a yes/no field is set to "yes".
func (s Submission) Flag(name string) bool {
	return s.Fields[name] == "yes"
}

// Logging describes whether a transcript is recorded and where.
type Logging struct {
	Enabled bool
	Path    string
}

// DuplicationRequest is a fully validated provisioning command. It is only
// produced by a successful validation pass and is passed by value.
type DuplicationRequest struct {
	SourceTenantID       string
	DomainLabel          string
	NewDomain            string
	NewPath              string
	Title                string
	AdminEmail           string
	CopyFiles            bool
	KeepUserAssociations bool
	Logging              Logging
}

// Success is the populated variant of a successful duplication.
type Success struct {
	NewTenantID string
	Message     string
	Domain      string
	Path        string
	// LogURL is set only when a transcript was recorded.
	LogURL string
}

// Failure is the populated variant of a failed duplication.
type Failure struct {
	Message string
	// Err is the underlying error, kept for classification by callers.
	Err error
}

// ProvisioningResult is the outcome of an orchestration run. Exactly one of
// Success and Failure is non-nil.
type ProvisioningResult struct {
	Success *Success
	Failure *Failure
}

// Succeeded builds a successful result.
func Succeeded(s Success) ProvisioningResult {
	return ProvisioningResult{Success: &s}
}

// Failed builds a failed result from err, keeping its message verbatim.
func Failed(err error) ProvisioningResult {
	return ProvisioningResult{Failure: &Failure{Message: err.Error(), Err: err}}
}

// OK reports whether the run succeeded.
func (r ProvisioningResult) OK() bool {
	return r.Success != nil
}
