package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type Balance struct {
	EmployeeID    string          `json:"employeeId"`
	LeaveTypeID   string          `json:"leaveTypeId"`
	LeaveTypeName string          `json:"leaveTypeName"`
	Paid          bool            `json:"paid"`
	AllocatedDays decimal.Decimal `json:"allocatedDays"`
	UsedDays      decimal.Decimal `json:"usedDays"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (b Balance) RemainingDays() decimal.Decimal {
	return b.AllocatedDays.Sub(b.UsedDays)
}
