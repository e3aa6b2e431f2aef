package ledger

// CompanyProfile holds the read-only facts about the tenant that the
// analytics and the advisor consult.
type CompanyProfile struct {
	AccountID     string `json:"account_id" yaml:"account_id" bson:"account_id" firestore:"accountId"`
	Name          string `json:"name" yaml:"name" bson:"name" firestore:"name"`
	EmployeeCount int    `json:"employee_count" yaml:"employee_count" bson:"employee_count" firestore:"employeeCount"`
	Industry      string `json:"industry" yaml:"industry" bson:"industry" firestore:"industry"`
	BaseCurrency  string `json:"base_currency" yaml:"base_currency" bson:"base_currency" firestore:"baseCurrency"`
}
