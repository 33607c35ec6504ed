package payments

// Method is how the customer pays. Gateway payments are captured online;
// cash and bank transfer are recorded by an operator.
type Method string

const (
	MethodGateway      Method = "GATEWAY"
	MethodCash         Method = "CASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodGateway, MethodCash, MethodBankTransfer:
		return true
	}
	return false
}

// IsManual reports whether settlement requires an operator rather than
// the payment gateway.
func (m Method) IsManual() bool {
	return m == MethodCash || m == MethodBankTransfer
}

// Status is the payment lifecycle state
type Status string

const (
	StatusCreated            Status = "CREATED"
	StatusAwaitingSettlement Status = "AWAITING_SETTLEMENT"
	StatusSettled            Status = "SETTLED"
	StatusFailed             Status = "FAILED"
	StatusCancelled          Status = "CANCELLED"
)

func (s Status) IsActive() bool {
	return s == StatusCreated || s == StatusAwaitingSettlement
}

func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusFailed || s == StatusCancelled
}
