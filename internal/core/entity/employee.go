package entity

// EmployeeRoleGrant is the adapted form of the teacher's WorkspaceMember /
// TenantMember entities: the cached view of an employee's role, department
// and last-verified clearance, used by the Resource Authorization Core
// (C11) to evaluate the policy table without re-decoding VCs on every call.
type EmployeeRoleGrant struct {
	EmployeeID     string
	CompanyID      string
	Role           string
	Department     string
	ClearanceLevel *ClassificationLevel // nil until a SecurityClearance VC has been seen
}

// EmployeeConnectionMapping is the persistent identifier -> connection
// record described in spec.md §6 ("data/employee-connection-mappings.json")
// and used by C10.Initiate to resolve a login identifier to a DIDComm
// connection.
type EmployeeConnectionMapping struct {
	Identifier                 string // login input: email or DID string
	ConnectionID               string
	Email                      string
	Name                       string
	Department                 string
	PersonalWalletConnectionID string // optional, used by C11 step 3
}
