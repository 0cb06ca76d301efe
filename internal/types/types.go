package types

type TransactionType string

type TransactionStatus string

type TradeSide string

type TradeStatus string

type LoanStatus string

type InvestmentStatus string

type AllocationStatus string

type TicketStatus string

type TicketPriority string

type NotificationType string

type SubscriptionStatus string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

const (
	TradeStatusOpen      TradeStatus = "open"
	TradeStatusClosed    TradeStatus = "closed"
	TradeStatusCancelled TradeStatus = "cancelled"
)

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusActive   LoanStatus = "active"
	LoanStatusClosed   LoanStatus = "closed"
	LoanStatusRejected LoanStatus = "rejected"
)

const (
	InvestmentStatusActive    InvestmentStatus = "active"
	InvestmentStatusCompleted InvestmentStatus = "completed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

const (
	AllocationStatusActive AllocationStatus = "active"
	AllocationStatusPaused AllocationStatus = "paused"
	AllocationStatusClosed AllocationStatus = "closed"
)

const (
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

const (
	SubscriptionStatusPending SubscriptionStatus = "pending"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)
