package domain

// EntityKind identifies a master-data table for mutation and merge operations
type EntityKind string

const (
	KindCompany EntityKind = "company"
	KindContact EntityKind = "contact"
	KindProject EntityKind = "project"
	KindProduct EntityKind = "product"
	KindInvoice EntityKind = "invoice"
	KindTask    EntityKind = "task"
)

// TaskType is the fixed vocabulary for the activity log
type TaskType string

const (
	TaskTypeMeeting      TaskType = "meeting"
	TaskTypeContact      TaskType = "contact"
	TaskTypeQuote        TaskType = "quote"
	TaskTypeTrial        TaskType = "trial"
	TaskTypeTechInquiry  TaskType = "tech_inquiry"
	TaskTypeFirstContact TaskType = "first_contact"
	TaskTypeDelayed      TaskType = "delayed"
)

// Task status values
const (
	TaskStatusOpen = 0
	TaskStatusDone = 1
)

// Priority values
const (
	PriorityLow    = 0
	PriorityNormal = 1
	PriorityHigh   = 2
)

// Invoice status values
const (
	InvoiceStatusDraft     = 0
	InvoiceStatusIssued    = 1
	InvoiceStatusPaid      = 2
	InvoiceStatusShipped   = 3
	InvoiceStatusCancelled = 4
	InvoiceStatusReturned  = 5
)

var invoiceStatusLabels = map[int]string{
	InvoiceStatusDraft:     "Draft",
	InvoiceStatusIssued:    "Issued",
	InvoiceStatusPaid:      "Paid",
	InvoiceStatusShipped:   "Shipped",
	InvoiceStatusCancelled: "Cancelled",
	InvoiceStatusReturned:  "Returned",
}

// InvoiceStatusLabel returns the display label for a status code
func InvoiceStatusLabel(status int) string {
	if label, ok := invoiceStatusLabels[status]; ok {
		return label
	}
	return "Unknown"
}

// Company is a client organization, the anchor for contacts, projects and tasks
type Company struct {
	CompanyID     int64   `db:"company_id"`
	CompanyName   string  `db:"company_name"`
	EmployeeCount *int64  `db:"employee_count"`
	Revenue       *int64  `db:"revenue"`
	Overview      *string `db:"overview"`
	Website       *string `db:"website"`
	Nationality   *string `db:"nationality"` // alpha-3 code
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
	IsDeleted     bool    `db:"is_deleted"`
}

// Contact is a person at a company. Resolution identity is (company_id, contact_name);
// the persisted uniqueness constraint is on email among live rows.
type Contact struct {
	ContactID   int64   `db:"contact_id"`
	CompanyID   int64   `db:"company_id"`
	ContactName string  `db:"contact_name"`
	Department  *string `db:"department"`
	Position    *string `db:"position"`
	Email       *string `db:"email"`
	Phone       *string `db:"phone"`
	MobilePhone *string `db:"mobile_phone"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
	IsDeleted   bool    `db:"is_deleted"`
}

// Product is a sellable item referenced by invoices, trials and inquiries
type Product struct {
	ProductID   int64    `db:"product_id"`
	ProductName string   `db:"product_name"`
	MinPrice    *float64 `db:"min_price"`
	MaxPrice    *float64 `db:"max_price"`
	CreatedAt   string   `db:"created_at"`
	UpdatedAt   string   `db:"updated_at"`
	IsDeleted   bool     `db:"is_deleted"`
}

// Project belongs to one company, optionally pinned to a primary contact
type Project struct {
	ProjectID   int64   `db:"project_id"`
	CompanyID   int64   `db:"company_id"`
	ContactID   *int64  `db:"contact_id"`
	ProjectName string  `db:"project_name"`
	Description *string `db:"description"`
	Status      *string `db:"status"`
	StartDate   *string `db:"start_date"`
	EndDate     *string `db:"end_date"`
	Application *string `db:"application"`
	AIModel     *string `db:"ai_model"`
	Requirement *string `db:"requirement"`
	Memo        *string `db:"memo"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
	IsDeleted   bool    `db:"is_deleted"`
}

// Task is the central activity-log row
type Task struct {
	TaskID     int64    `db:"task_id"`
	ProjectID  *int64   `db:"project_id"`
	CompanyID  int64    `db:"company_id"`
	ContactID  *int64   `db:"contact_id"`
	UserID     int64    `db:"user_id"`
	InvoiceID  *int64   `db:"invoice_id"`
	ActionDate string   `db:"action_date"` // YYYY-MM-DD
	Agenda     *string  `db:"agenda"`
	ActionItem *string  `db:"action_item"`
	DueDate    *string  `db:"due_date"`
	TaskStatus int      `db:"task_status"`
	TaskType   TaskType `db:"task_type"`
	Priority   int      `db:"priority"`
	Memo       *string  `db:"memo"`
	CreatedAt  string   `db:"created_at"`
	UpdatedAt  string   `db:"updated_at"`
	IsDeleted  bool     `db:"is_deleted"`
}

// Invoice belongs to one project/company/user
type Invoice struct {
	InvoiceID   int64    `db:"invoice_id"`
	ProjectID   int64    `db:"project_id"`
	CompanyID   int64    `db:"company_id"`
	ContactID   *int64   `db:"contact_id"`
	UserID      int64    `db:"user_id"`
	IssueDate   string   `db:"issue_date"`
	DueDate     *string  `db:"due_date"`
	TotalAmount *float64 `db:"total_amount"`
	Status      int      `db:"status"`
	CreatedAt   string   `db:"created_at"`
	UpdatedAt   string   `db:"updated_at"`
	IsDeleted   bool     `db:"is_deleted"`
}

// InvoiceItem is one line on an invoice; Subtotal is computed at insert time
// from quantity, unit price and discount rate.
type InvoiceItem struct {
	ItemID          int64   `db:"item_id"`
	InvoiceID       int64   `db:"invoice_id"`
	ProductID       int64   `db:"product_id"`
	Quantity        int64   `db:"quantity"`
	UnitPriceAtSale float64 `db:"unit_price_at_sale"`
	DiscountRate    float64 `db:"discount_rate"`
	Subtotal        float64 `db:"subtotal"`
}

// FirstContactLog records how a company was first reached (inbound, cold
// call, exhibition) in 1:N relation to the task that logged it.
type FirstContactLog struct {
	LogID       int64   `db:"log_id"`
	TaskID      int64   `db:"task_id"`
	CompanyID   int64   `db:"company_id"`
	ContactID   *int64  `db:"contact_id"`
	ProjectID   *int64  `db:"project_id"`
	ContactType *string `db:"contact_type"`
	Channel     *string `db:"channel"`
	ContactDate string  `db:"contact_date"`
}

// FreeTrial is the 1:1 satellite for trial tasks
type FreeTrial struct {
	TaskID      int64   `db:"task_id"`
	ProjectID   int64   `db:"project_id"`
	ProductID   int64   `db:"product_id"`
	StartDate   *string `db:"start_date"`
	EndDate     *string `db:"end_date"`
	IsConverted bool    `db:"is_converted"`
}

// TechInquiry is the 1:1 satellite for tech_inquiry tasks
type TechInquiry struct {
	TaskID      int64   `db:"task_id"`
	ProjectID   *int64  `db:"project_id"`
	ProductID   *int64  `db:"product_id"`
	Application *string `db:"application"`
	AIModel     *string `db:"ai_model"`
	IsResolved  bool    `db:"is_resolved"`
}

// ProjectParticipant links a contact into a project with a role label
type ProjectParticipant struct {
	ProjectID int64   `db:"project_id"`
	ContactID int64   `db:"contact_id"`
	Role      *string `db:"role"`
}

// User is an authenticated actor; tasks and invoices are attributed to one
type User struct {
	UserID       int64   `db:"user_id"`
	Username     string  `db:"username"`
	PasswordHash string  `db:"password_hash"`
	UserEmail    *string `db:"user_email"`
	AuthLevel    int     `db:"auth_level"`
	CreatedAt    string  `db:"created_at"`
	UpdatedAt    string  `db:"updated_at"`
	IsDeleted    bool    `db:"is_deleted"`
}

// Event is one row of the append-only operation log
type Event struct {
	ID           int64   `db:"id"`
	Timestamp    string  `db:"timestamp"`
	ActorID      *int64  `db:"actor_id"`
	ResourceType string  `db:"resource_type"`
	ResourceID   *int64  `db:"resource_id"`
	EventType    string  `db:"event_type"`
	Payload      *string `db:"payload"` // JSON
}
